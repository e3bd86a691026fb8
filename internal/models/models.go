package models

import (
	"strings"
	"time"
)

// Database represents a workspace database found via search. Title is nil
// when the source object carries no parseable title array, which is an
// expected state for faulty databases, not an error.
type Database struct {
	ID    string  `json:"id"`
	Title *string `json:"title,omitempty"`
}

// Page represents a page row of a database with its title resolved from
// either the "Name" or the "Title" property.
type Page struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// PageAttributes is the full extracted form of a page. All fields except ID
// and URL are optional or defaultable; the API contract guarantees both.
type PageAttributes struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
	IsArchived      bool       `json:"is_archived"`
	MarkdownContent *string    `json:"markdown_content,omitempty"`
	NumHighlights   int        `json:"num_highlights"`
	URL             string     `json:"url"`
	ExternalURL     *string    `json:"external_url,omitempty"`
	Stars           *string    `json:"stars,omitempty"`
	ProjectName     *string    `json:"project_name,omitempty"`
}

// ParseTime parses an ISO-8601 timestamp. A trailing "Z" is normalized to
// "+00:00" before parsing, so both spellings of UTC yield the same instant.
func ParseTime(value string) (time.Time, error) {
	if strings.HasSuffix(value, "Z") {
		value = strings.TrimSuffix(value, "Z") + "+00:00"
	}
	return time.Parse("2006-01-02T15:04:05.999999999-07:00", value)
}
