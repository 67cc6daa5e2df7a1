package diagnosis

import "sort"

// Suggest proposes symptoms to ask about next. It walks the candidate profiles in the
// given order and counts, for each symptom not yet observed, how many candidates carry it.
// Symptoms shared by more candidates come first; ties keep first-seen order.
// Unknown candidate ids are skipped. At most limit names are returned.
func (c *Corpus) Suggest(candidateIDs []string, observed []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	known := make(map[string]struct{}, len(observed))
	for _, s := range observed {
		known[s] = struct{}{}
	}

	type tally struct {
		name  string
		count int
		first int
	}
	byName := make(map[string]*tally)
	var order []*tally

	visited := make(map[string]struct{}, len(candidateIDs))
	for _, id := range candidateIDs {
		if _, dup := visited[id]; dup {
			continue
		}
		visited[id] = struct{}{}

		i, ok := c.byID[id]
		if !ok {
			continue
		}
		seenInProfile := make(map[string]struct{})
		for _, s := range c.docs[i].profile.Symptoms {
			if _, ok := known[s]; ok {
				continue
			}
			if _, dup := seenInProfile[s]; dup {
				continue
			}
			seenInProfile[s] = struct{}{}

			t, ok := byName[s]
			if !ok {
				t = &tally{name: s, first: len(order)}
				byName[s] = t
				order = append(order, t)
			}
			t.count++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].first < order[j].first
	})

	if len(order) > limit {
		order = order[:limit]
	}
	out := make([]string, len(order))
	for i, t := range order {
		out[i] = t.name
	}
	return out
}

// CandidateIDs lists the ids to draw suggestions from: the ranked diseases when any
// scored, otherwise every indexed profile.
func (c *Corpus) CandidateIDs(ranked []Result) []string {
	if len(ranked) > 0 {
		ids := make([]string, len(ranked))
		for i, r := range ranked {
			ids[i] = r.DiseaseID
		}
		return ids
	}
	ids := make([]string, len(c.docs))
	for i, d := range c.docs {
		ids[i] = d.profile.DiseaseID
	}
	return ids
}
