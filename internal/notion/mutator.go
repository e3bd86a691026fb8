package notion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"notion-assistant/internal/extract"
	"notion-assistant/internal/logger"
)

// maxChildrenPerAppend is the API's limit on children per append call.
const maxChildrenPerAppend = 90

// Marker phrases that must both appear in a page's text before it counts as
// AI-analyzed.
const (
	markerAnalysis   = "AI Analysis"
	markerMainPoints = "main points"
)

// ErrUnresolvedReference is returned when a relation target title has no
// entry in the title-to-id mapping.
var ErrUnresolvedReference = errors.New("unresolved reference")

// AppendBlocks appends blocks to a page in chunks of at most 90 children per
// call, in order, and returns the refreshed page. A mid-sequence failure
// leaves the earlier chunks applied.
func (c *Client) AppendBlocks(ctx context.Context, pageID string, blocks notionapi.Blocks) (*notionapi.Page, error) {
	for start := 0; start < len(blocks); start += maxChildrenPerAppend {
		end := start + maxChildrenPerAppend
		if end > len(blocks) {
			end = len(blocks)
		}
		_, err := c.client.Block().AppendChildren(ctx, notionapi.BlockID(pageID), &notionapi.AppendBlockChildrenRequest{
			Children: blocks[start:end],
		})
		if err != nil {
			return nil, fmt.Errorf("failed to append blocks to page %s: %w", pageID, err)
		}
	}

	page, err := c.client.Page().Get(ctx, notionapi.PageID(pageID))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve page %s: %w", pageID, err)
	}
	return page, nil
}

// SetRelations appends relation links for the given titles to a page's
// relation property. Every title must resolve through titleToID before any
// network call is made: a missing title returns ErrUnresolvedReference and no
// external state changes. Existing relation entries are preserved.
func (c *Client) SetRelations(ctx context.Context, page *notionapi.Page, property string, titles []string, titleToID map[string]string) error {
	prop, ok := page.Properties[property].(*notionapi.RelationProperty)
	if !ok {
		logger.Warn("Page does not have relation property", map[string]interface{}{
			"page_id":  string(page.ID),
			"property": property,
		})
		return nil
	}

	relations := append([]notionapi.Relation{}, prop.Relation...)
	for _, title := range titles {
		id, ok := titleToID[strings.TrimSpace(title)]
		if !ok {
			return fmt.Errorf("%w: no %s found with title %q", ErrUnresolvedReference, property, title)
		}
		relations = append(relations, notionapi.Relation{ID: notionapi.PageID(id)})
		logger.Debug("Resolved relation target", map[string]interface{}{
			"page_id":  string(page.ID),
			"property": property,
			"title":    title,
		})
	}

	_, err := c.client.Page().Update(ctx, notionapi.PageID(page.ID), &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{
			property: notionapi.RelationProperty{
				Type:     notionapi.PropertyTypeRelation,
				Relation: relations,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update %s property of page %s: %w", property, page.ID, err)
	}
	return nil
}

// MarkAnalyzed sets the is_ai_analyzed checkbox to true when both marker
// phrases occur in the page text, case-insensitively. It never unsets the
// flag and issues no call when a phrase is missing. Returns whether an
// update was made.
func (c *Client) MarkAnalyzed(ctx context.Context, page *notionapi.Page, pageText string) (bool, error) {
	lower := strings.ToLower(pageText)
	if !strings.Contains(lower, strings.ToLower(markerAnalysis)) ||
		!strings.Contains(lower, strings.ToLower(markerMainPoints)) {
		return false, nil
	}

	if _, ok := page.Properties["is_ai_analyzed"].(*notionapi.CheckboxProperty); !ok {
		logger.Warn("Page does not have is_ai_analyzed property", map[string]interface{}{
			"page_id": string(page.ID),
		})
		return false, nil
	}

	_, err := c.client.Page().Update(ctx, notionapi.PageID(page.ID), &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{
			"is_ai_analyzed": notionapi.CheckboxProperty{
				Type:     notionapi.PropertyTypeCheckbox,
				Checkbox: true,
			},
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to update is_ai_analyzed property of page %s: %w", page.ID, err)
	}

	logger.Info("Marked page as AI analyzed", map[string]interface{}{
		"page_id": string(page.ID),
	})
	return true, nil
}

// RenameFromParent renames a title-less database to its parent page's title
// suffixed with the current timestamp. When the database has no page parent
// or the parent has no resolvable title, the record is not recoverable and
// an empty name is returned without error.
func (c *Client) RenameFromParent(ctx context.Context, db *notionapi.Database) (string, error) {
	if db.Parent.PageID == "" {
		return "", nil
	}

	parent, err := c.client.Page().Get(ctx, db.Parent.PageID)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve parent page of database %s: %w", db.ID, err)
	}
	title, ok := extract.Title(parent)
	if !ok {
		return "", nil
	}

	name := fmt.Sprintf("%s-%s", title, time.Now().Format("2006-01-02 15:04:05"))
	_, err = c.client.Database().Update(ctx, notionapi.DatabaseID(db.ID), &notionapi.DatabaseUpdateRequest{
		Title: []notionapi.RichText{
			{
				Text: &notionapi.Text{
					Content: name,
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to rename database %s: %w", db.ID, err)
	}
	return name, nil
}
