package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"gorm.io/gorm/clause"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/models"
)

type tagSeed struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type ingredientSeed struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// Loads the tag and ingredient catalogs from JSON files. Rows that
// already exist are left untouched.
func main() {
	tagsFile := flag.String("tags", "data/tags.json", "tag catalog JSON file")
	ingredientsFile := flag.String("ingredients", "data/ingredients.json", "ingredient catalog JSON file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	db, err := database.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var tags []tagSeed
	if err := readJSON(*tagsFile, &tags); err != nil {
		log.Fatalf("Failed to read %s: %v", *tagsFile, err)
	}
	for _, t := range tags {
		tag := models.Tag{Name: t.Name, Color: t.Color, Slug: t.Slug}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
			log.Fatalf("Failed to seed tag %q: %v", t.Name, err)
		}
	}
	log.Printf("Seeded %d tags", len(tags))

	var ingredients []ingredientSeed
	if err := readJSON(*ingredientsFile, &ingredients); err != nil {
		log.Fatalf("Failed to read %s: %v", *ingredientsFile, err)
	}
	for _, i := range ingredients {
		ingredient := models.Ingredient{Name: i.Name, MeasurementUnit: i.MeasurementUnit}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ingredient).Error; err != nil {
			log.Fatalf("Failed to seed ingredient %q: %v", i.Name, err)
		}
	}
	log.Printf("Seeded %d ingredients", len(ingredients))
}

func readJSON(path string, v interface{}) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(contents, v)
}
