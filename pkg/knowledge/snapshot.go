package knowledge

import (
	"fmt"
	"sort"
	"time"

	"poultry-diagnose-be/pkg/apperror"
	"poultry-diagnose-be/pkg/diagnosis"
	"poultry-diagnose-be/pkg/graph"
	"poultry-diagnose-be/pkg/symptom"
)

const (
	SourceGraph  = "graph"
	SourceMirror = "mirror"
)

// Snapshot is one immutable, internally consistent view of the disease profiles.
// A new Snapshot is built for every refresh; a live one is never modified.
type Snapshot struct {
	Version  int64
	Source   string
	LoadedAt time.Time

	corpus       *diagnosis.Corpus
	symptomCount int
}

// NewSnapshot validates profiles and indexes them sorted by disease id.
// Symptom names pass through symptom.NormalizeName so they compare equal to
// resolved canonical names.
func NewSnapshot(profiles map[string]graph.DiseaseProfile, version int64, source string) (*Snapshot, error) {
	const op = "knowledge.NewSnapshot"
	if len(profiles) == 0 {
		return nil, apperror.Inconsistent(op, "no disease profiles loaded", nil)
	}

	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	vocabulary := make(map[string]struct{})
	list := make([]graph.DiseaseProfile, 0, len(ids))
	for _, id := range ids {
		p := profiles[id]
		if id == "" || p.DiseaseName == "" {
			return nil, apperror.Inconsistent(op, fmt.Sprintf("profile %q has no id or name", id), nil)
		}
		if p.DiseaseID != "" && p.DiseaseID != id {
			return nil, apperror.Inconsistent(op, fmt.Sprintf("profile keyed %q carries id %q", id, p.DiseaseID), nil)
		}

		symptoms := make([]string, 0, len(p.Symptoms))
		seen := make(map[string]struct{}, len(p.Symptoms))
		for _, s := range p.Symptoms {
			name := symptom.NormalizeName(s)
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			vocabulary[name] = struct{}{}
			symptoms = append(symptoms, name)
		}
		if len(symptoms) == 0 {
			return nil, apperror.Inconsistent(op, fmt.Sprintf("profile %q has no symptoms", id), nil)
		}
		list = append(list, graph.DiseaseProfile{DiseaseID: id, DiseaseName: p.DiseaseName, Symptoms: symptoms})
	}

	return &Snapshot{
		Version:      version,
		Source:       source,
		LoadedAt:     time.Now(),
		corpus:       diagnosis.NewCorpus(list),
		symptomCount: len(vocabulary),
	}, nil
}

// Corpus is the ranking index of this snapshot.
func (s *Snapshot) Corpus() *diagnosis.Corpus {
	return s.corpus
}

func (s *Snapshot) DiseaseCount() int {
	return s.corpus.Len()
}

func (s *Snapshot) SymptomCount() int {
	return s.symptomCount
}

// Profiles returns a copy of the profiles keyed by disease id.
func (s *Snapshot) Profiles() map[string]graph.DiseaseProfile {
	list := s.corpus.Profiles()
	out := make(map[string]graph.DiseaseProfile, len(list))
	for _, p := range list {
		out[p.DiseaseID] = p
	}
	return out
}
