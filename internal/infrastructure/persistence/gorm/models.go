// Package gorm provides GORM model definitions and repositories
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RecipeModel represents the GORM model for saved recipes
type RecipeModel struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"type:varchar(255);not null;index"`
	Description string `gorm:"type:text"`

	// Timing (stored in minutes)
	PrepTime int `gorm:"column:prep_time;default:0"`
	CookTime int `gorm:"column:cook_time;default:0"`
	Servings int `gorm:"default:1"`

	Ingredients             JSONField   `gorm:"type:json"`
	Instructions            StringSlice `gorm:"type:json"`
	Nutrition               JSONField   `gorm:"type:json"`
	PsychonutritionAnalysis JSONField   `gorm:"column:psychonutrition_analysis;type:json"`

	// Categorization
	Tags       StringSlice `gorm:"type:json"`
	Difficulty string      `gorm:"type:varchar(20)"`
	Cuisine    string      `gorm:"type:varchar(50)"`
	Season     string      `gorm:"type:varchar(20);index"`

	ChefTips            StringSlice `gorm:"column:chef_tips;type:json"`
	StorageInstructions string      `gorm:"column:storage_instructions;type:text"`
	Variations          StringSlice `gorm:"type:json"`

	// Score copied out of the analysis for querying
	AnxietyScore *float64 `gorm:"column:anxiety_score"`

	CreatedAt time.Time `gorm:"index"`
}

// TableName overrides the table name
func (RecipeModel) TableName() string {
	return "recipes"
}

// Models lists every model for AutoMigrate
func Models() []interface{} {
	return []interface{}{&RecipeModel{}}
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// JSONField holds an encoded JSON document; empty means NULL
type JSONField []byte

// Scan implements the sql.Scanner interface
func (j *JSONField) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append(JSONField(nil), v...)
	case string:
		*j = JSONField(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONField", value)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (j JSONField) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

// Decode unmarshals the document into v. It reports false for NULL.
func (j JSONField) Decode(v interface{}) (bool, error) {
	if len(j) == 0 || string(j) == "null" {
		return false, nil
	}
	return true, json.Unmarshal(j, v)
}

func encodeJSON(v interface{}) (JSONField, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return JSONField(b), nil
}
