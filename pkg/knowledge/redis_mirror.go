package knowledge

import (
	"context"
	"encoding/json"
	"fmt"

	"poultry-diagnose-be/pkg/graph"

	"github.com/redis/go-redis/v9"
)

// DefaultMirrorKey is the hash the profiles are preloaded into
const DefaultMirrorKey = "disease_symptoms"

type mirrorValue struct {
	DiseaseName string   `json:"disease_name"`
	Symptoms    []string `json:"symptoms"`
}

// RedisMirror stores one hash field per disease id with a JSON value.
type RedisMirror struct {
	rdb redis.UniversalClient
	key string
}

func NewRedisMirror(rdb redis.UniversalClient, key string) *RedisMirror {
	if key == "" {
		key = DefaultMirrorKey
	}
	return &RedisMirror{rdb: rdb, key: key}
}

// Save replaces the whole hash in one transaction.
func (m *RedisMirror) Save(ctx context.Context, profiles map[string]graph.DiseaseProfile) error {
	values := make(map[string]interface{}, len(profiles))
	for id, p := range profiles {
		raw, err := json.Marshal(mirrorValue{DiseaseName: p.DiseaseName, Symptoms: p.Symptoms})
		if err != nil {
			return fmt.Errorf("encode profile %s: %w", id, err)
		}
		values[id] = string(raw)
	}

	_, err := m.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, m.key)
		if len(values) > 0 {
			pipe.HSet(ctx, m.key, values)
		}
		return nil
	})
	return err
}

func (m *RedisMirror) Load(ctx context.Context) (map[string]graph.DiseaseProfile, error) {
	fields, err := m.rdb.HGetAll(ctx, m.key).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]graph.DiseaseProfile, len(fields))
	for id, raw := range fields {
		var v mirrorValue
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("decode mirrored profile %s: %w", id, err)
		}
		out[id] = graph.DiseaseProfile{DiseaseID: id, DiseaseName: v.DiseaseName, Symptoms: v.Symptoms}
	}
	return out, nil
}
