package diagnosis

import (
	"strings"
	"testing"

	"poultry-diagnose-be/pkg/graph"

	"github.com/stretchr/testify/assert"
)

func TestSuggest_FrequencyThenFirstSeen(t *testing.T) {
	profiles := append(sampleProfiles(), graph.DiseaseProfile{
		DiseaseID: "D", DiseaseName: "mycoplasma", Symptoms: []string{"gasping", "runny_nose"},
	})
	corpus := NewCorpus(profiles)

	got := corpus.Suggest([]string{"B", "A", "D"}, []string{"cough"}, DefaultSuggestLimit)
	assert.Equal(t, []string{"gasping", "runny_nose", "rales"}, got)
}

func TestSuggest_CapAndExcludesObserved(t *testing.T) {
	corpus := NewCorpus([]graph.DiseaseProfile{
		{DiseaseID: "big", DiseaseName: "big", Symptoms: []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7"}},
	})

	got := corpus.Suggest([]string{"big"}, []string{"s1"}, DefaultSuggestLimit)
	assert.Equal(t, []string{"s2", "s3", "s4", "s5", "s6"}, got)
	assert.NotContains(t, got, "s1")
}

func TestSuggest_SkipsUnknownAndDuplicateCandidates(t *testing.T) {
	corpus := NewCorpus(sampleProfiles())

	got := corpus.Suggest([]string{"nope", "A", "A"}, []string{"cough"}, 0)
	assert.Equal(t, []string{"runny_nose"}, got)
}

func TestCandidateIDs(t *testing.T) {
	corpus := NewCorpus(sampleProfiles())

	assert.Equal(t, []string{"A", "B", "C"}, corpus.CandidateIDs(nil))
	assert.Equal(t, []string{"C"}, corpus.CandidateIDs([]Result{{DiseaseID: "C"}}))
}

func TestMessages(t *testing.T) {
	assert.Contains(t, ClarifyMessage("fake123"), "fake123")

	report := DiagnosisMessage([]string{"咳嗽", "流鼻涕"}, []Finding{
		{Result: Result{DiseaseName: "传染性鼻炎"}, Treatment: "磺胺类药物"},
		{Result: Result{DiseaseName: "支原体病"}},
	})
	assert.True(t, strings.HasPrefix(report, "根据症状 咳嗽, 流鼻涕，可能疾病：传染性鼻炎, 支原体病"))
	assert.Contains(t, report, "治疗：磺胺类药物")
	assert.NotContains(t, report, "【支原体病】")

	follow := SuggestionMessage([]string{"咳嗽"}, []string{"传染性鼻炎"}, []string{"流鼻涕"})
	assert.Contains(t, follow, "疑似疾病：传染性鼻炎")
	assert.Contains(t, follow, "流鼻涕")

	empty := SuggestionMessage(nil, nil, []string{"咳嗽", "流泪"})
	assert.True(t, strings.HasPrefix(empty, "暂未识别到具体症状"))
	assert.Contains(t, empty, "咳嗽, 流泪")
}
