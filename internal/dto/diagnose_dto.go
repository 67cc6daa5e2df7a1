package dto

import (
	"time"

	"poultry-diagnose-be/pkg/diagnosis"
	"poultry-diagnose-be/pkg/store"
)

type DiagnoseRequest struct {
	UserId    string   `json:"user_id" validate:"required,max=128"`
	SessionId string   `json:"session_id" validate:"required,max=128"`
	Query     string   `json:"query" validate:"max=4000"`
	Intent    *string  `json:"intent,omitempty" validate:"omitempty,max=64"`
	Entities  []string `json:"entities,omitempty" validate:"max=32,dive,max=256"`
}

// Outcome names the branch a turn ended in
type Outcome string

const (
	OutcomeClarifying Outcome = "clarifying"
	OutcomeDiagnosing Outcome = "diagnosing"
	OutcomeSuggesting Outcome = "suggesting"
)

type DiagnoseResponse struct {
	Reply        string              `json:"reply"`
	SessionState store.Session       `json:"session_state"`
	NeedClarify  bool                `json:"need_clarify"`
	Diagnosed    *bool               `json:"diagnosed,omitempty"`
	Diseases     []string            `json:"diseases,omitempty"`
	Symptoms     []string            `json:"symptoms,omitempty"`
	Outcome      Outcome             `json:"outcome"`
	Findings     []diagnosis.Finding `json:"findings,omitempty"`
	Candidates   []diagnosis.Result  `json:"candidates,omitempty"`
}

type SessionQuery struct {
	UserId    string `query:"user_id" validate:"required,max=128"`
	SessionId string `query:"session_id" validate:"required,max=128"`
}

type SymptomDiseasesResponse struct {
	Symptom  string   `json:"symptom"`
	Diseases []string `json:"diseases"`
}

type KnowledgeStatsResponse struct {
	Version         int64     `json:"version"`
	Source          string    `json:"source"`
	LoadedAt        time.Time `json:"loaded_at"`
	DiseaseCount    int       `json:"disease_count"`
	SymptomCount    int       `json:"symptom_count"`
	VocabularyCount int       `json:"vocabulary_count"`
}

type RefreshResponse struct {
	RequestId string `json:"request_id"`
	Queued    bool   `json:"queued"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
