package diagnosis

import (
	"math"
	"sort"

	"poultry-diagnose-be/pkg/graph"
)

const (
	// DefaultThreshold is the minimum normalized score for a disease to be diagnosed.
	DefaultThreshold = 0.7

	// DefaultSuggestLimit caps the follow-up symptoms offered per turn.
	DefaultSuggestLimit = 5

	bm25K1 = 1.5
	bm25B  = 0.75
)

// Result is one scored disease. Score is in [0,1]; Raw is the un-normalized BM25 sum.
type Result struct {
	DiseaseID   string   `json:"disease_id"`
	DiseaseName string   `json:"disease_name"`
	Score       float64  `json:"score"`
	Raw         float64  `json:"-"`
	Matched     []string `json:"matched_symptoms"`
}

type profileDoc struct {
	profile graph.DiseaseProfile
	terms   map[string]struct{}
	weight  float64
	self    float64
}

// Corpus is a BM25 index over disease profiles. Each profile is a document whose
// terms are its symptoms; term frequency is binary.
//
// A raw score sums IDF * length weight over the observed symptoms the profile has.
// Dividing by the profile's self-score (all of its own symptoms observed) yields the
// IDF-weighted share of the profile covered by the observation.
//
// Corpus is immutable after NewCorpus and safe for concurrent use.
type Corpus struct {
	docs   []profileDoc
	byID   map[string]int
	idf    map[string]float64
	avgLen float64
}

// NewCorpus indexes profiles in the given order. Duplicate symptoms inside a profile count once.
func NewCorpus(profiles []graph.DiseaseProfile) *Corpus {
	c := &Corpus{
		docs: make([]profileDoc, 0, len(profiles)),
		byID: make(map[string]int, len(profiles)),
		idf:  make(map[string]float64),
	}
	if len(profiles) == 0 {
		return c
	}

	df := make(map[string]int)
	totalLen := 0
	for _, p := range profiles {
		doc := profileDoc{profile: p, terms: make(map[string]struct{}, len(p.Symptoms))}
		for _, s := range p.Symptoms {
			doc.terms[s] = struct{}{}
		}
		for term := range doc.terms {
			df[term]++
		}
		totalLen += len(doc.terms)
		c.byID[p.DiseaseID] = len(c.docs)
		c.docs = append(c.docs, doc)
	}

	n := len(c.docs)
	c.avgLen = float64(totalLen) / float64(n)
	for term, f := range df {
		c.idf[term] = math.Log(float64(n+1)/float64(f+1)) + 1.0
	}

	for i := range c.docs {
		d := &c.docs[i]
		d.weight = lengthWeight(len(d.terms), c.avgLen)
		for term := range d.terms {
			d.self += c.idf[term] * d.weight
		}
	}
	return c
}

// lengthWeight is the BM25 term factor for tf=1.
func lengthWeight(docLen int, avgLen float64) float64 {
	if avgLen == 0 {
		return 0
	}
	norm := 1 - bm25B + bm25B*float64(docLen)/avgLen
	return (bm25K1 + 1) / (1 + bm25K1*norm)
}

// Len returns the number of indexed profiles.
func (c *Corpus) Len() int {
	return len(c.docs)
}

// Profiles returns the indexed profiles in index order.
func (c *Corpus) Profiles() []graph.DiseaseProfile {
	out := make([]graph.DiseaseProfile, len(c.docs))
	for i, d := range c.docs {
		out[i] = d.profile
	}
	return out
}

// Profile returns the profile with the given id.
func (c *Corpus) Profile(id string) (graph.DiseaseProfile, bool) {
	i, ok := c.byID[id]
	if !ok {
		return graph.DiseaseProfile{}, false
	}
	return c.docs[i].profile, true
}

// Rank scores every profile sharing at least one symptom with observed.
// Results are ordered by score, then raw score, then disease id.
// Unknown symptoms contribute nothing; empty observed yields no results.
func (c *Corpus) Rank(observed []string) []Result {
	if len(observed) == 0 || len(c.docs) == 0 {
		return []Result{}
	}

	query := dedupe(observed)
	results := make([]Result, 0)
	for _, d := range c.docs {
		if d.self == 0 {
			continue
		}
		var raw float64
		var matched []string
		for _, term := range query {
			if _, ok := d.terms[term]; !ok {
				continue
			}
			raw += c.idf[term] * d.weight
			matched = append(matched, term)
		}
		if raw == 0 {
			continue
		}
		score := raw / d.self
		if score > 1 {
			score = 1
		}
		results = append(results, Result{
			DiseaseID:   d.profile.DiseaseID,
			DiseaseName: d.profile.DiseaseName,
			Score:       score,
			Raw:         raw,
			Matched:     matched,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Raw != b.Raw {
			return a.Raw > b.Raw
		}
		return a.DiseaseID < b.DiseaseID
	})
	return results
}

// Rank builds a throwaway corpus over profiles and ranks observed against it.
func Rank(observed []string, profiles []graph.DiseaseProfile) []Result {
	return NewCorpus(profiles).Rank(observed)
}

// Qualifying keeps the results whose score reaches threshold, preserving order.
func Qualifying(results []Result, threshold float64) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Score >= threshold {
			out = append(out, r)
		}
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
