// Package extract pulls typed attributes out of raw workspace API objects.
// Every accessor is total: a missing or malformed property yields an absent
// value, never a panic, so a partially filled page can still be processed.
package extract

import (
	"time"

	"github.com/jomei/notionapi"

	"notion-assistant/internal/models"
)

// Property names used by the PARA databases.
const (
	propHighlights      = "Highlights"
	propStars           = "Future Value Rank"
	propExternalURL     = "URL"
	propProjects        = "Projects"
	propRelatedProjects = "Related to Projects Database (Related to Media Vault (Property))"
)

// Title returns the first rich-text span of the "Title" property, falling
// back to "Name". The bool is false when neither resolves.
func Title(page *notionapi.Page) (string, bool) {
	return titleProperty(page, "Title", "Name")
}

// PageRecord resolves a page into its flattened record form. Pages name
// their title property "Name" first; failing that, "Title" is consulted.
// The bool is false for faulty records lacking both.
func PageRecord(page *notionapi.Page) (models.Page, bool) {
	title, ok := titleProperty(page, "Name", "Title")
	if !ok {
		return models.Page{}, false
	}
	return models.Page{
		ID:    string(page.ID),
		URL:   page.URL,
		Title: title,
	}, true
}

func titleProperty(page *notionapi.Page, names ...string) (string, bool) {
	for _, name := range names {
		prop, ok := page.Properties[name].(*notionapi.TitleProperty)
		if !ok || len(prop.Title) == 0 {
			continue
		}
		return prop.Title[0].PlainText, true
	}
	return "", false
}

// DatabaseTitle returns the first title span of a database object. Faulty
// databases have an empty title array and yield no value.
func DatabaseTitle(db *notionapi.Database) (string, bool) {
	if len(db.Title) == 0 {
		return "", false
	}
	return db.Title[0].PlainText, true
}

// CreatedAt prefers the resource's built-in created timestamp and falls back
// to a custom "created_at" property. Nil when both are absent.
func CreatedAt(page *notionapi.Page) *time.Time {
	if !page.CreatedTime.IsZero() {
		t := page.CreatedTime
		return &t
	}
	if prop, ok := page.Properties["created_at"].(*notionapi.CreatedTimeProperty); ok && !prop.CreatedTime.IsZero() {
		t := prop.CreatedTime
		return &t
	}
	return nil
}

// UpdatedAt prefers the built-in last-edited timestamp and falls back to a
// custom "updated_at" property. Nil when both are absent.
func UpdatedAt(page *notionapi.Page) *time.Time {
	if !page.LastEditedTime.IsZero() {
		t := page.LastEditedTime
		return &t
	}
	if prop, ok := page.Properties["updated_at"].(*notionapi.LastEditedTimeProperty); ok && !prop.LastEditedTime.IsZero() {
		t := prop.LastEditedTime
		return &t
	}
	return nil
}

// NumHighlights returns the "Highlights" number property, defaulting to 0
// when the property is absent.
func NumHighlights(page *notionapi.Page) int {
	prop, ok := page.Properties[propHighlights].(*notionapi.NumberProperty)
	if !ok {
		return 0
	}
	return int(prop.Number)
}

// Stars returns the "Future Value Rank" select name, or no value.
func Stars(page *notionapi.Page) (string, bool) {
	prop, ok := page.Properties[propStars].(*notionapi.SelectProperty)
	if !ok || prop.Select.Name == "" {
		return "", false
	}
	return prop.Select.Name, true
}

// ProjectName returns the id of the first related project, consulting the
// verbose auto-generated relation property before the plain "Projects" one.
// Relation entries carry only ids on the wire; resolving the id to a display
// name is up to the caller with a title-to-id mapping.
func ProjectName(page *notionapi.Page) (string, bool) {
	for _, name := range []string{propRelatedProjects, propProjects} {
		prop, ok := page.Properties[name].(*notionapi.RelationProperty)
		if !ok || len(prop.Relation) == 0 {
			continue
		}
		return string(prop.Relation[0].ID), true
	}
	return "", false
}

// ExternalURL returns the "URL" property holding the clip source, or no value.
func ExternalURL(page *notionapi.Page) (string, bool) {
	prop, ok := page.Properties[propExternalURL].(*notionapi.URLProperty)
	if !ok || prop.URL == "" {
		return "", false
	}
	return prop.URL, true
}

// IsArchived reports the page's archived flag.
func IsArchived(page *notionapi.Page) bool {
	return page.Archived
}

// PageAttributes assembles the full attribute record for a page. The page's
// markdown content is fetched separately and passed in; nil means the content
// was not retrieved.
func PageAttributes(page *notionapi.Page, markdown *string) models.PageAttributes {
	attrs := models.PageAttributes{
		ID:              string(page.ID),
		IsArchived:      IsArchived(page),
		MarkdownContent: markdown,
		NumHighlights:   NumHighlights(page),
		URL:             page.URL,
		CreatedAt:       CreatedAt(page),
		UpdatedAt:       UpdatedAt(page),
	}
	if title, ok := Title(page); ok {
		attrs.Title = title
	}
	if url, ok := ExternalURL(page); ok {
		attrs.ExternalURL = &url
	}
	if stars, ok := Stars(page); ok {
		attrs.Stars = &stars
	}
	if project, ok := ProjectName(page); ok {
		attrs.ProjectName = &project
	}
	return attrs
}
