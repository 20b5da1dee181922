package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alchemorsel/marco/internal/domain/recipe"
	apperrors "github.com/alchemorsel/marco/pkg/errors"
)

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// loadRecipe reads a recipe saved with generate --output
func loadRecipe(path string) (*recipe.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("cannot read recipe file: %v", err))
	}

	var r recipe.Recipe
	if isYAML(path) {
		err = yaml.Unmarshal(data, &r)
	} else {
		err = json.Unmarshal(data, &r)
	}
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s is not a valid recipe: %v", path, err))
	}
	if r.Name == "" {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s is not a valid recipe: missing name", path))
	}
	r.ApplyDefaults()
	return &r, nil
}

// saveRecipe writes r as indented JSON, or YAML for .yaml/.yml paths
func saveRecipe(path string, r *recipe.Recipe) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode recipe: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write recipe: %w", err)
	}
	return nil
}
