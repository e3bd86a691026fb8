// Package match selects a database from a collection by approximate name.
package match

import (
	"errors"
	"fmt"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"notion-assistant/internal/logger"
	"notion-assistant/internal/models"
)

// Threshold is the minimum partial-ratio score (0-100 scale) a title must
// exceed to count as a match.
const Threshold = 90

// ErrNoMatch is returned when no database title scores above Threshold.
var ErrNoMatch = errors.New("no database matched")

// Filter returns every database whose title scores above Threshold against
// name, case-insensitively, preserving the input order. Databases without a
// title never match.
func Filter(databases []models.Database, name string) []models.Database {
	target := strings.ToLower(name)
	var matched []models.Database
	for _, db := range databases {
		if db.Title == nil {
			continue
		}
		if fuzzy.PartialRatio(strings.ToLower(*db.Title), target) > Threshold {
			matched = append(matched, db)
		}
	}
	return matched
}

// Best returns the first database matching name in collection order, or
// ErrNoMatch when the filtered set is empty.
func Best(databases []models.Database, name string) (models.Database, error) {
	matched := Filter(databases, name)
	logger.Debug("Fuzzy matched databases", map[string]interface{}{
		"name":    name,
		"matches": len(matched),
	})
	if len(matched) == 0 {
		return models.Database{}, fmt.Errorf("%w: %q", ErrNoMatch, name)
	}
	return matched[0], nil
}
