package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const (
	cypherDiseasesForSymptom = `
MATCH (d:Disease)-[:DIAGNOSE]->(f:Feature {featureName: $symptom})
RETURN DISTINCT d.diseaseName AS disease
ORDER BY disease
LIMIT $limit`

	cypherAllProfiles = `
MATCH (d:Disease)-[:DIAGNOSE]->(f:Feature)
RETURN d.diseaseID AS disease_id, d.diseaseName AS disease_name, collect(f.featureName) AS symptoms`

	cypherDiseaseText = `
MATCH (d:Disease {diseaseName: $name})
RETURN coalesce(d[$property], '') AS text
LIMIT 1`

	cypherFeatures = `
MATCH (f:Feature)
RETURN f.featureID AS id, f.featureName AS name
ORDER BY id`
)

// Neo4jStore reads the knowledge graph built by the preprocessing job.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewNeo4jStore(ctx context.Context, uri, user, password, database string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""), func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = 20
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to reach neo4j: %w", err)
	}
	return &Neo4jStore{driver: driver, database: database}, nil
}

func (s *Neo4jStore) read(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	opts := []neo4j.ExecuteQueryConfigurationOption{neo4j.ExecuteQueryWithReadersRouting()}
	if s.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(s.database))
	}
	result, err := neo4j.ExecuteQuery(ctx, s.driver, cypher, params, neo4j.EagerResultTransformer, opts...)
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

func (s *Neo4jStore) DiseasesForSymptom(ctx context.Context, name string) ([]string, error) {
	records, err := s.read(ctx, cypherDiseasesForSymptom, map[string]any{"symptom": name, "limit": symptomLookupLimit})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, stringField(rec, "disease"))
	}
	return out, nil
}

func (s *Neo4jStore) AllDiseaseProfiles(ctx context.Context) (map[string]DiseaseProfile, error) {
	records, err := s.read(ctx, cypherAllProfiles, nil)
	if err != nil {
		return nil, err
	}
	out := make(map[string]DiseaseProfile, len(records))
	for _, rec := range records {
		p := DiseaseProfile{
			DiseaseID:   stringField(rec, "disease_id"),
			DiseaseName: stringField(rec, "disease_name"),
		}
		if raw, ok := rec.Get("symptoms"); ok {
			if list, ok := raw.([]any); ok {
				for _, v := range list {
					if str, ok := v.(string); ok {
						p.Symptoms = append(p.Symptoms, str)
					}
				}
			}
		}
		out[p.DiseaseID] = p
	}
	return out, nil
}

func (s *Neo4jStore) TreatmentFor(ctx context.Context, diseaseName string) (string, error) {
	return s.diseaseText(ctx, diseaseName, "treatment")
}

func (s *Neo4jStore) PreventionFor(ctx context.Context, diseaseName string) (string, error) {
	return s.diseaseText(ctx, diseaseName, "prevention")
}

func (s *Neo4jStore) diseaseText(ctx context.Context, diseaseName, property string) (string, error) {
	records, err := s.read(ctx, cypherDiseaseText, map[string]any{"name": diseaseName, "property": property})
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}
	return stringField(records[0], "text"), nil
}

func (s *Neo4jStore) Features(ctx context.Context) ([]Feature, error) {
	records, err := s.read(ctx, cypherFeatures, nil)
	if err != nil {
		return nil, err
	}
	out := make([]Feature, 0, len(records))
	for _, rec := range records {
		out = append(out, Feature{ID: stringField(rec, "id"), Name: stringField(rec, "name")})
	}
	return out, nil
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func stringField(rec *neo4j.Record, key string) string {
	raw, ok := rec.Get(key)
	if !ok || raw == nil {
		return ""
	}
	if str, ok := raw.(string); ok {
		return str
	}
	return fmt.Sprint(raw)
}
