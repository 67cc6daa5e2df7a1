package main

import (
	"context"
	"flag"
	"log"
	"os"

	"poultry-diagnose-be/internal/model"
	"poultry-diagnose-be/internal/repository/implementation"
	"poultry-diagnose-be/pkg/database"
	"poultry-diagnose-be/pkg/graph"
	"poultry-diagnose-be/pkg/symptom"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	graphExport := flag.String("graph", "", "seed diseases and features from a JSON graph export")
	vectors := flag.String("vectors", "", "seed symptom vectors from a {ids,names,vecs} snapshot")
	embeddingModel := flag.String("model", "m3e-small", "embedding model recorded with seeded vectors")
	flag.Parse()

	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn, database.Options{})
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. Extensions (AutoMigrate does not create them)
	log.Println("Step 1: Setting up extensions...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
		log.Fatalf("Error: Failed to create vector extension: %v", err)
	}

	// 4. AutoMigrate
	log.Println("Step 2: Running AutoMigrate...")
	if err := db.AutoMigrate(&model.Feature{}, &model.Disease{}, &model.SymptomVector{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	ctx := context.Background()
	if *graphExport != "" {
		log.Printf("Step 3: Seeding graph from %s...", *graphExport)
		if err := seedGraph(ctx, db, *graphExport); err != nil {
			log.Fatalf("Error: Graph seed failed: %v", err)
		}
	}
	if *vectors != "" {
		log.Printf("Step 4: Seeding symptom vectors from %s...", *vectors)
		entries, err := symptom.LoadFile(*vectors)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		if err := implementation.NewSymptomVectorRepository(db).ReplaceAll(ctx, entries, *embeddingModel); err != nil {
			log.Fatalf("Error: Vector seed failed: %v", err)
		}
		log.Printf("Seeded %d symptom vectors", len(entries))
	}

	log.Println("✅ Migration completed")
}

// seedGraph upserts every disease of the export with its features and care texts.
func seedGraph(ctx context.Context, db *gorm.DB, path string) error {
	store, err := graph.LoadMemoryStore(path)
	if err != nil {
		return err
	}
	profiles, err := store.AllDiseaseProfiles(ctx)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		known := make(map[string]model.Feature)
		var existing []model.Feature
		if err := tx.Find(&existing).Error; err != nil {
			return err
		}
		for _, f := range existing {
			known[f.Name] = f
		}

		for _, p := range profiles {
			treatment, _ := store.TreatmentFor(ctx, p.DiseaseName)
			prevention, _ := store.PreventionFor(ctx, p.DiseaseName)

			disease := model.Disease{Id: p.DiseaseID, Name: p.DiseaseName, Treatment: treatment, Prevention: prevention}
			for _, name := range p.Symptoms {
				f, ok := known[name]
				if !ok {
					f = model.Feature{Id: uuid.NewString(), Name: name}
					if err := tx.Create(&f).Error; err != nil {
						return err
					}
					known[name] = f
				}
				disease.Features = append(disease.Features, f)
			}

			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Omit("Features").Create(&disease).Error; err != nil {
				return err
			}
			if err := tx.Model(&disease).Association("Features").Replace(disease.Features); err != nil {
				return err
			}
			log.Printf("  %s: %d features", p.DiseaseName, len(disease.Features))
		}
		return nil
	})
}
