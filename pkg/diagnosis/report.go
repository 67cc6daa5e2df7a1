package diagnosis

import (
	"fmt"
	"strings"
)

const listSeparator = ", "

// Finding is a diagnosed disease with the care texts looked up for it
type Finding struct {
	Result
	Treatment  string `json:"treatment,omitempty"`
	Prevention string `json:"prevention,omitempty"`
}

// ClarifyMessage asks the user to restate a mention that matched no known symptom.
func ClarifyMessage(pending string) string {
	return fmt.Sprintf("您提到的“%s”暂未识别，请确认具体症状？", pending)
}

// DiagnosisMessage summarizes the confirmed symptoms and the diagnosed diseases.
func DiagnosisMessage(symptoms []string, findings []Finding) string {
	var b strings.Builder
	names := make([]string, len(findings))
	for i, f := range findings {
		names[i] = f.DiseaseName
	}
	fmt.Fprintf(&b, "根据症状 %s，可能疾病：%s", strings.Join(symptoms, listSeparator), strings.Join(names, listSeparator))

	for _, f := range findings {
		if f.Treatment == "" && f.Prevention == "" {
			continue
		}
		fmt.Fprintf(&b, "\n【%s】", f.DiseaseName)
		if f.Treatment != "" {
			fmt.Fprintf(&b, "\n治疗：%s", f.Treatment)
		}
		if f.Prevention != "" {
			fmt.Fprintf(&b, "\n预防：%s", f.Prevention)
		}
	}
	return b.String()
}

// SuggestionMessage lists the best-guess diseases and asks about follow-up symptoms
// when no disease qualifies.
func SuggestionMessage(symptoms, guesses, suggestions []string) string {
	var b strings.Builder
	if len(symptoms) == 0 {
		b.WriteString("暂未识别到具体症状")
	} else {
		fmt.Fprintf(&b, "根据症状 %s，暂无法确诊", strings.Join(symptoms, listSeparator))
	}
	if len(guesses) > 0 {
		fmt.Fprintf(&b, "，疑似疾病：%s", strings.Join(guesses, listSeparator))
	}
	if len(suggestions) == 0 {
		b.WriteString("。请补充其他症状。")
		return b.String()
	}
	fmt.Fprintf(&b, "。请确认是否还有以下症状：%s", strings.Join(suggestions, listSeparator))
	return b.String()
}
