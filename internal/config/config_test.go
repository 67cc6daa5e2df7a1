package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SIM_THRESHOLD", "")
	t.Setenv("DIAG_THRESHOLD", "")

	cfg := Load()
	assert.Equal(t, 0.7, cfg.Diagnosis.SimThreshold)
	assert.Equal(t, 0.7, cfg.Diagnosis.DiagThreshold)
	assert.Equal(t, 5, cfg.Diagnosis.SuggestLimit)
	assert.Equal(t, "disease_symptoms", cfg.Diagnosis.MirrorKey)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SIM_THRESHOLD", "0.82")
	t.Setenv("KB_REFRESH_INTERVAL", "90s")
	t.Setenv("SUGGEST_LIMIT", "not-a-number")
	t.Setenv("GO_ENV", "production")

	cfg := Load()
	assert.Equal(t, 0.82, cfg.Diagnosis.SimThreshold)
	assert.Equal(t, 90*time.Second, cfg.Diagnosis.RefreshInterval)
	assert.Equal(t, 5, cfg.Diagnosis.SuggestLimit)
	assert.True(t, cfg.IsProduction())
}
