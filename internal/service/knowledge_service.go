package service

import (
	"context"
	"strings"

	"poultry-diagnose-be/internal/dto"
	"poultry-diagnose-be/pkg/apperror"
	"poultry-diagnose-be/pkg/graph"
	"poultry-diagnose-be/pkg/knowledge"
	"poultry-diagnose-be/pkg/kvstore"
	"poultry-diagnose-be/pkg/symptom"
)

type IKnowledgeService interface {
	DiseasesForSymptom(ctx context.Context, name string) (*dto.SymptomDiseasesResponse, error)
	Stats(ctx context.Context) (*dto.KnowledgeStatsResponse, error)
	Ready(ctx context.Context) error
}

type knowledgeService struct {
	graph     graph.Store
	knowledge *knowledge.KnowledgeBase
	index     *symptom.Index
	kv        kvstore.HashStore
}

func NewKnowledgeService(graphStore graph.Store, kb *knowledge.KnowledgeBase, index *symptom.Index, kv kvstore.HashStore) IKnowledgeService {
	return &knowledgeService{graph: graphStore, knowledge: kb, index: index, kv: kv}
}

func (s *knowledgeService) DiseasesForSymptom(ctx context.Context, name string) (*dto.SymptomDiseasesResponse, error) {
	// feature names are matched exactly as authored in the graph
	featureName := strings.TrimSpace(name)
	if featureName == "" {
		return nil, apperror.Validation("knowledge.DiseasesForSymptom", "symptom name is required")
	}
	diseases, err := s.graph.DiseasesForSymptom(ctx, featureName)
	if err != nil {
		return nil, apperror.Unavailable("graph.DiseasesForSymptom", err)
	}
	if diseases == nil {
		diseases = []string{}
	}
	return &dto.SymptomDiseasesResponse{Symptom: featureName, Diseases: diseases}, nil
}

func (s *knowledgeService) Stats(_ context.Context) (*dto.KnowledgeStatsResponse, error) {
	snap, err := s.knowledge.Current()
	if err != nil {
		return nil, err
	}
	return &dto.KnowledgeStatsResponse{
		Version:         snap.Version,
		Source:          snap.Source,
		LoadedAt:        snap.LoadedAt,
		DiseaseCount:    snap.DiseaseCount(),
		SymptomCount:    snap.SymptomCount(),
		VocabularyCount: s.index.Len(),
	}, nil
}

// Ready reports whether a turn could be served right now.
func (s *knowledgeService) Ready(ctx context.Context) error {
	if _, err := s.knowledge.Current(); err != nil {
		return err
	}
	if err := s.kv.Ping(ctx); err != nil {
		return apperror.Unavailable("kvstore.Ping", err)
	}
	return nil
}
