// Package knowledge loads the nutrient and seasonal knowledge bases from
// JSON or YAML files in a data directory.
package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/alchemorsel/marco/internal/domain/knowledge"
	"github.com/alchemorsel/marco/internal/ports/outbound"
)

// Base file names, tried with each extension in order
const (
	NutrientsFile = "nutrients"
	SeasonalFile  = "seasonal_ingredients"
)

var extensions = []string{".json", ".yaml", ".yml"}

// FileSource reads the knowledge bases once and serves them read-only
type FileSource struct {
	dir    string
	logger *zap.Logger

	nutrientsOnce sync.Once
	nutrients     *knowledge.NutrientDB
	nutrientsErr  error

	seasonalOnce sync.Once
	seasonal     *knowledge.SeasonalDB
	seasonalErr  error
}

var _ outbound.KnowledgeSource = (*FileSource)(nil)

// NewFileSource creates a source rooted at dir
func NewFileSource(dir string, logger *zap.Logger) *FileSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{dir: dir, logger: logger.Named("knowledge")}
}

// NutrientDB returns the nutrient database, or an empty one when no file exists
func (s *FileSource) NutrientDB(ctx context.Context) (*knowledge.NutrientDB, error) {
	s.nutrientsOnce.Do(func() {
		db := knowledge.EmptyNutrientDB()
		found, err := s.load(NutrientsFile, db)
		if err != nil {
			s.nutrientsErr = err
			return
		}
		if !found {
			db = knowledge.EmptyNutrientDB()
		}
		s.nutrients = db
		s.logger.Debug("Nutrient database loaded",
			zap.Bool("found", found),
			zap.Int("nutrients", len(db.Nutrients)),
			zap.Int("combinations", len(db.FoodCombinations)),
		)
	})
	return s.nutrients, s.nutrientsErr
}

// SeasonalDB returns the seasonal database, or an empty one when no file exists
func (s *FileSource) SeasonalDB(ctx context.Context) (*knowledge.SeasonalDB, error) {
	s.seasonalOnce.Do(func() {
		db := knowledge.EmptySeasonalDB()
		found, err := s.load(SeasonalFile, db)
		if err != nil {
			s.seasonalErr = err
			return
		}
		if !found {
			db = knowledge.EmptySeasonalDB()
		}
		if db.Ingredients == nil {
			db.Ingredients = map[string]knowledge.SeasonalItems{}
		}
		if db.Seasons == nil {
			db.Seasons = map[string][]string{}
		}
		s.seasonal = db
		s.logger.Debug("Seasonal database loaded",
			zap.Bool("found", found),
			zap.Int("categories", len(db.Ingredients)),
			zap.Int("seasons", len(db.Seasons)),
		)
	})
	return s.seasonal, s.seasonalErr
}

// load decodes the first existing <base><ext> file into out
func (s *FileSource) load(base string, out interface{}) (bool, error) {
	for _, ext := range extensions {
		path := filepath.Join(s.dir, base+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("read %s: %w", path, err)
		}
		if ext == ".json" {
			err = json.Unmarshal(data, out)
		} else {
			err = yaml.Unmarshal(data, out)
		}
		if err != nil {
			return false, fmt.Errorf("decode %s: %w", path, err)
		}
		return true, nil
	}
	s.logger.Debug("Knowledge file not found, using empty database",
		zap.String("dir", s.dir),
		zap.String("file", base),
	)
	return false, nil
}
