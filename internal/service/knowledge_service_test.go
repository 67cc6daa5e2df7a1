package service

import (
	"context"
	"errors"
	"testing"

	"poultry-diagnose-be/internal/pkg/logger"
	"poultry-diagnose-be/pkg/apperror"
	"poultry-diagnose-be/pkg/graph"
	"poultry-diagnose-be/pkg/knowledge"
	"poultry-diagnose-be/pkg/kvstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnowledgeService_DiseasesForSymptom(t *testing.T) {
	f := newFixture(t)
	svc := NewKnowledgeService(f.graph, f.kb, f.index, f.kv)

	res, err := svc.DiseasesForSymptom(context.Background(), " 咳嗽 ")
	require.NoError(t, err)
	assert.Equal(t, "咳嗽", res.Symptom)
	assert.Equal(t, []string{"传染性鼻炎", "支原体病"}, res.Diseases)

	none, err := svc.DiseasesForSymptom(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, []string{}, none.Diseases)

	_, err = svc.DiseasesForSymptom(context.Background(), "  ")
	assert.True(t, apperror.IsValidation(err))

	f.graph.SetErr(errors.New("down"))
	_, err = svc.DiseasesForSymptom(context.Background(), "咳嗽")
	assert.True(t, apperror.IsUnavailable(err))
}

func TestKnowledgeService_DiseasesForSymptomKeepsAuthoredName(t *testing.T) {
	f := newFixture(t)
	f.graph.Replace([]graph.MemoryDisease{
		{ID: "d9", Name: "Fowl Pox", Symptoms: []string{"Swollen  Comb"}},
	})
	svc := NewKnowledgeService(f.graph, f.kb, f.index, f.kv)

	res, err := svc.DiseasesForSymptom(context.Background(), "  Swollen  Comb ")
	require.NoError(t, err)
	assert.Equal(t, "Swollen  Comb", res.Symptom)
	assert.Equal(t, []string{"Fowl Pox"}, res.Diseases)
}

func TestKnowledgeService_Stats(t *testing.T) {
	f := newFixture(t)
	svc := NewKnowledgeService(f.graph, f.kb, f.index, f.kv)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Version)
	assert.Equal(t, knowledge.SourceGraph, stats.Source)
	assert.Equal(t, 3, stats.DiseaseCount)
	assert.Equal(t, 7, stats.SymptomCount)
	assert.Equal(t, len(vocabulary), stats.VocabularyCount)
}

func TestKnowledgeService_Ready(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, NewKnowledgeService(f.graph, f.kb, f.index, f.kv).Ready(context.Background()))

	empty := knowledge.New(graph.NewMemoryStore(nil), nil, logger.NewNopLogger())
	err := NewKnowledgeService(f.graph, empty, f.index, f.kv).Ready(context.Background())
	assert.True(t, apperror.IsInconsistent(err))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	kv := kvstore.NewRedisHashStore(rdb)
	svc := NewKnowledgeService(f.graph, f.kb, f.index, kv)
	require.NoError(t, svc.Ready(context.Background()))

	mr.Close()
	assert.True(t, apperror.IsUnavailable(svc.Ready(context.Background())))
}
