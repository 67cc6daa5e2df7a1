package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// MemoryDisease is a disease node with its linked symptoms and care texts
type MemoryDisease struct {
	ID         string   `json:"disease_id"`
	Name       string   `json:"disease_name"`
	Symptoms   []string `json:"symptoms"`
	Treatment  string   `json:"treatment"`
	Prevention string   `json:"prevention"`
}

// MemoryStore serves a graph held in memory, loaded from a JSON export or built by tests.
type MemoryStore struct {
	mu       sync.RWMutex
	diseases []MemoryDisease
	err      error
}

func NewMemoryStore(diseases []MemoryDisease) *MemoryStore {
	return &MemoryStore{diseases: diseases}
}

// LoadMemoryStore reads a JSON array of diseases.
func LoadMemoryStore(path string) (*MemoryStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph export: %w", err)
	}
	var diseases []MemoryDisease
	if err := json.Unmarshal(raw, &diseases); err != nil {
		return nil, fmt.Errorf("decode graph export: %w", err)
	}
	return NewMemoryStore(diseases), nil
}

// SetErr makes every read fail with err (nil restores normal behaviour).
func (s *MemoryStore) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Replace swaps the served diseases.
func (s *MemoryStore) Replace(diseases []MemoryDisease) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diseases = diseases
}

func (s *MemoryStore) DiseasesForSymptom(_ context.Context, name string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []string
	for _, d := range s.diseases {
		for _, sym := range d.Symptoms {
			if sym == name {
				out = append(out, d.Name)
				break
			}
		}
	}
	sort.Strings(out)
	if len(out) > symptomLookupLimit {
		out = out[:symptomLookupLimit]
	}
	return out, nil
}

func (s *MemoryStore) AllDiseaseProfiles(_ context.Context) (map[string]DiseaseProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]DiseaseProfile, len(s.diseases))
	for _, d := range s.diseases {
		out[d.ID] = DiseaseProfile{
			DiseaseID:   d.ID,
			DiseaseName: d.Name,
			Symptoms:    append([]string(nil), d.Symptoms...),
		}
	}
	return out, nil
}

func (s *MemoryStore) TreatmentFor(_ context.Context, diseaseName string) (string, error) {
	d, err := s.find(diseaseName)
	if err != nil || d == nil {
		return "", err
	}
	return d.Treatment, nil
}

func (s *MemoryStore) PreventionFor(_ context.Context, diseaseName string) (string, error) {
	d, err := s.find(diseaseName)
	if err != nil || d == nil {
		return "", err
	}
	return d.Prevention, nil
}

func (s *MemoryStore) Features(_ context.Context) ([]Feature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	seen := make(map[string]struct{})
	var out []Feature
	for _, d := range s.diseases {
		for _, sym := range d.Symptoms {
			if _, dup := seen[sym]; dup {
				continue
			}
			seen[sym] = struct{}{}
			out = append(out, Feature{ID: fmt.Sprintf("feature_%d", len(out)+1), Name: sym})
		}
	}
	return out, nil
}

func (s *MemoryStore) Close(context.Context) error {
	return nil
}

func (s *MemoryStore) find(name string) (*MemoryDisease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.diseases {
		if s.diseases[i].Name == name {
			d := s.diseases[i]
			return &d, nil
		}
	}
	return nil, nil
}
