package knowledge

import (
	"context"
	"errors"
	"sync"
	"testing"

	"poultry-diagnose-be/internal/pkg/logger"
	"poultry-diagnose-be/pkg/apperror"
	"poultry-diagnose-be/pkg/graph"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphDiseases() []graph.MemoryDisease {
	return []graph.MemoryDisease{
		{ID: "d2", Name: "传染性支气管炎", Symptoms: []string{"咳嗽", "呼吸困难"}},
		{ID: "d1", Name: "传染性鼻炎", Symptoms: []string{"咳嗽", "流鼻涕", "眼睑水肿", "咳嗽"}},
	}
}

func newMirror(t *testing.T) (*RedisMirror, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisMirror(rdb, ""), mr
}

func TestNewSnapshot_SortsAndNormalizes(t *testing.T) {
	profiles, err := graph.NewMemoryStore(graphDiseases()).AllDiseaseProfiles(context.Background())
	require.NoError(t, err)

	snap, err := NewSnapshot(profiles, 1, SourceGraph)
	require.NoError(t, err)

	list := snap.Corpus().Profiles()
	require.Len(t, list, 2)
	assert.Equal(t, "d1", list[0].DiseaseID)
	assert.Equal(t, []string{"咳嗽", "流鼻涕", "眼睑水肿"}, list[0].Symptoms)
	assert.Equal(t, 4, snap.SymptomCount())
	assert.Equal(t, 2, snap.DiseaseCount())
}

func TestNewSnapshot_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		profiles map[string]graph.DiseaseProfile
	}{
		{"empty", map[string]graph.DiseaseProfile{}},
		{"no name", map[string]graph.DiseaseProfile{"d1": {DiseaseID: "d1", Symptoms: []string{"a"}}}},
		{"no symptoms", map[string]graph.DiseaseProfile{"d1": {DiseaseID: "d1", DiseaseName: "x", Symptoms: []string{" "}}}},
		{"id mismatch", map[string]graph.DiseaseProfile{"d1": {DiseaseID: "d9", DiseaseName: "x", Symptoms: []string{"a"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSnapshot(tt.profiles, 1, SourceGraph)
			assert.True(t, apperror.IsInconsistent(err))
		})
	}
}

func TestKnowledgeBase_CurrentBeforeLoad(t *testing.T) {
	kb := New(graph.NewMemoryStore(nil), nil, logger.NewNopLogger())
	_, err := kb.Current()
	assert.True(t, apperror.IsInconsistent(err))
}

func TestKnowledgeBase_RefreshSwapsAndMirrors(t *testing.T) {
	ctx := context.Background()
	source := graph.NewMemoryStore(graphDiseases())
	mirror, mr := newMirror(t)
	kb := New(source, mirror, logger.NewNopLogger())

	first, err := kb.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Version)
	assert.Equal(t, SourceGraph, first.Source)
	assert.True(t, mr.Exists(DefaultMirrorKey))

	source.Replace([]graph.MemoryDisease{{ID: "d3", Name: "新城疫", Symptoms: []string{"呼吸困难"}}})
	second, err := kb.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Version)

	current, err := kb.Current()
	require.NoError(t, err)
	assert.Same(t, second, current)

	// the old snapshot is untouched
	assert.Equal(t, 2, first.DiseaseCount())
	assert.Equal(t, 1, second.DiseaseCount())

	mirrored, err := mirror.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"d3"}, keys(mirrored))
}

func TestKnowledgeBase_FailedRefreshKeepsOldSnapshot(t *testing.T) {
	ctx := context.Background()
	source := graph.NewMemoryStore(graphDiseases())
	kb := New(source, nil, logger.NewNopLogger())
	first, err := kb.Load(ctx)
	require.NoError(t, err)

	source.SetErr(errors.New("neo4j down"))
	_, err = kb.Refresh(ctx)
	assert.True(t, apperror.IsUnavailable(err))

	source.SetErr(nil)
	source.Replace(nil)
	_, err = kb.Refresh(ctx)
	assert.True(t, apperror.IsInconsistent(err))

	current, err := kb.Current()
	require.NoError(t, err)
	assert.Same(t, first, current)
}

func TestKnowledgeBase_LoadFallsBackToMirror(t *testing.T) {
	ctx := context.Background()
	mirror, _ := newMirror(t)
	profiles, err := graph.NewMemoryStore(graphDiseases()).AllDiseaseProfiles(ctx)
	require.NoError(t, err)
	require.NoError(t, mirror.Save(ctx, profiles))

	source := graph.NewMemoryStore(nil)
	source.SetErr(errors.New("neo4j down"))
	kb := New(source, mirror, logger.NewNopLogger())

	snap, err := kb.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, SourceMirror, snap.Source)
	assert.Equal(t, 2, snap.DiseaseCount())
}

func TestKnowledgeBase_LoadFailsWithoutAnySource(t *testing.T) {
	ctx := context.Background()
	source := graph.NewMemoryStore(nil)
	source.SetErr(errors.New("neo4j down"))

	_, err := New(source, nil, logger.NewNopLogger()).Load(ctx)
	assert.True(t, apperror.IsInconsistent(err))

	mirror, mr := newMirror(t)
	mr.Close()
	_, err = New(source, mirror, logger.NewNopLogger()).Load(ctx)
	assert.True(t, apperror.IsInconsistent(err))
}

func TestKnowledgeBase_ConcurrentReadersDuringRefresh(t *testing.T) {
	ctx := context.Background()
	source := graph.NewMemoryStore(graphDiseases())
	kb := New(source, nil, logger.NewNopLogger())
	_, err := kb.Load(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				snap, err := kb.Current()
				if assert.NoError(t, err) {
					n := snap.DiseaseCount()
					assert.Equal(t, n, len(snap.Profiles()))
				}
			}
		}()
	}
	for i := 0; i < 10; i++ {
		_, err := kb.Refresh(ctx)
		assert.NoError(t, err)
	}
	wg.Wait()
}

func keys(m map[string]graph.DiseaseProfile) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
