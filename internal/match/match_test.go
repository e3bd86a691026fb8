package match

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"notion-assistant/internal/models"
)

func strPtr(s string) *string { return &s }

func TestFilter(t *testing.T) {
	databases := []models.Database{
		{ID: "db-1", Title: strPtr("Old Media Vault")},
		{ID: "db-2", Title: strPtr("Unrelated")},
		{ID: "db-3", Title: nil},
	}

	tests := []struct {
		name    string
		target  string
		wantIDs []string
	}{
		{
			name:    "Exact name differing in case",
			target:  "old media vault",
			wantIDs: []string{"db-1"},
		},
		{
			name:    "Substring of a longer title",
			target:  "media vault",
			wantIDs: []string{"db-1"},
		},
		{
			name:    "No similar title",
			target:  "groceries",
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched := Filter(databases, tt.target)
			var ids []string
			for _, db := range matched {
				ids = append(ids, db.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestBest(t *testing.T) {
	databases := []models.Database{
		{ID: "db-1", Title: strPtr("Old Media Vault")},
		{ID: "db-2", Title: strPtr("Old Media Vault Archive")},
	}

	best, err := Best(databases, "old media vault")
	assert.NoError(t, err)
	assert.Equal(t, "db-1", best.ID)

	// Deterministic: same inputs pick the same first match.
	again, err := Best(databases, "old media vault")
	assert.NoError(t, err)
	assert.Equal(t, best, again)
}

func TestBestNoMatch(t *testing.T) {
	databases := []models.Database{
		{ID: "db-2", Title: strPtr("Unrelated")},
	}
	_, err := Best(databases, "old media vault")
	assert.True(t, errors.Is(err, ErrNoMatch))

	_, err = Best(nil, "anything")
	assert.True(t, errors.Is(err, ErrNoMatch))
}
