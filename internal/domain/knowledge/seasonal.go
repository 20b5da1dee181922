package knowledge

import "strings"

// Categories are searched in this order by the substitution engine.
var Categories = []string{"vegetables", "fruits", "herbs", "fish"}

// Substitute is the registered replacement for an ingredient in one season.
type Substitute struct {
	Ingredient string `json:"ingredient" yaml:"ingredient"`
	Reason     string `json:"reason" yaml:"reason"`
}

// SeasonalItem describes when an ingredient is at its best and what to use
// instead the rest of the year.
type SeasonalItem struct {
	Key         string                `json:"-" yaml:"-"`
	PeakSeason  []string              `json:"peak_season" yaml:"peak_season"`
	Substitutes map[string]Substitute `json:"substitutes" yaml:"substitutes"`
}

// InPeak reports whether season is one of the item's peak seasons.
func (i SeasonalItem) InPeak(season string) bool {
	for _, s := range i.PeakSeason {
		if s == season {
			return true
		}
	}
	return false
}

// Matches reports whether the item key and the lowercased ingredient name
// contain one another.
func (i SeasonalItem) Matches(ingredient string) bool {
	return strings.Contains(ingredient, i.Key) || strings.Contains(i.Key, ingredient)
}

// SeasonalItems is an ordered item table for one category.
type SeasonalItems []SeasonalItem

// SeasonalDB is the seasonal knowledge base.
type SeasonalDB struct {
	// Ingredients maps category to its ordered item table.
	Ingredients map[string]SeasonalItems `json:"seasonal_ingredients" yaml:"seasonal_ingredients"`
	// Seasons lists the ingredients that are in season, per season.
	Seasons map[string][]string    `json:"seasons" yaml:"seasons"`
	Regions map[string]interface{} `json:"regions,omitempty" yaml:"regions,omitempty"`
}

// EmptySeasonalDB returns the inert database used when no file is available.
func EmptySeasonalDB() *SeasonalDB {
	return &SeasonalDB{
		Ingredients: map[string]SeasonalItems{},
		Seasons:     map[string][]string{},
	}
}

// Category returns the item table of a category, empty if unknown.
func (db *SeasonalDB) Category(name string) SeasonalItems {
	if db == nil {
		return nil
	}
	return db.Ingredients[name]
}

// InSeason returns the ingredients listed for season.
func (db *SeasonalDB) InSeason(season string) []string {
	if db == nil {
		return nil
	}
	return db.Seasons[season]
}
