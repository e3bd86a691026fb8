package notion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"notion-assistant/internal/extract"
	"notion-assistant/internal/logger"
	"notion-assistant/internal/models"
)

// pageSize is the number of results requested per pagination call.
const pageSize = 100

// EachDatabase invokes fn for every database in the workspace, following the
// search cursor until the service reports no further pages. A failed page
// fetch aborts the whole sequence; an error from fn stops the iteration.
func (c *Client) EachDatabase(ctx context.Context, fn func(*notionapi.Database) error) error {
	cursor := notionapi.Cursor("")
	for {
		resp, err := c.client.Search().Do(ctx, &notionapi.SearchRequest{
			StartCursor: cursor,
			PageSize:    pageSize,
			Filter: notionapi.SearchFilter{
				Property: "object",
				Value:    "database",
			},
		})
		if err != nil {
			return fmt.Errorf("failed to search databases: %w", err)
		}
		for _, result := range resp.Results {
			db, ok := result.(*notionapi.Database)
			if !ok {
				continue
			}
			if err := fn(db); err != nil {
				return err
			}
		}
		if !resp.HasMore {
			return nil
		}
		cursor = resp.NextCursor
	}
}

// EachPage invokes fn for every page of a database, in cursor order. With
// onlyUnanalyzed set, the query is filtered to pages whose is_ai_analyzed
// checkbox is false.
func (c *Client) EachPage(ctx context.Context, databaseID string, onlyUnanalyzed bool, fn func(*notionapi.Page) error) error {
	req := &notionapi.DatabaseQueryRequest{
		PageSize: pageSize,
	}
	if onlyUnanalyzed {
		// A false Equals would be dropped by omitempty, so the filter is
		// expressed as does-not-equal true.
		req.Filter = notionapi.PropertyFilter{
			Property: "is_ai_analyzed",
			Checkbox: &notionapi.CheckboxFilterCondition{
				DoesNotEqual: true,
			},
		}
	}

	for {
		resp, err := c.client.Database().Query(ctx, notionapi.DatabaseID(databaseID), req)
		if err != nil {
			return fmt.Errorf("failed to query database %s: %w", databaseID, err)
		}
		for i := range resp.Results {
			if err := fn(&resp.Results[i]); err != nil {
				return err
			}
		}
		if !resp.HasMore {
			return nil
		}
		req.StartCursor = resp.NextCursor
	}
}

// EachBlock invokes fn for every child block of a page.
func (c *Client) EachBlock(ctx context.Context, pageID string, fn func(notionapi.Block) error) error {
	pagination := &notionapi.Pagination{
		PageSize: pageSize,
	}
	for {
		resp, err := c.client.Block().GetChildren(ctx, notionapi.BlockID(pageID), pagination)
		if err != nil {
			return fmt.Errorf("failed to list blocks of page %s: %w", pageID, err)
		}
		for _, block := range resp.Results {
			if err := fn(block); err != nil {
				return err
			}
		}
		if !resp.HasMore {
			return nil
		}
		pagination.StartCursor = notionapi.Cursor(resp.NextCursor)
	}
}

// Databases materializes all databases in the workspace, split into records
// with a parseable title and faulty ones without. Faulty databases are logged
// and a rename from their parent page's title is attempted so they become
// resolvable on a later run; the batch itself never fails over one record.
func (c *Client) Databases(ctx context.Context) ([]models.Database, []models.Database, error) {
	var databases, faulty []models.Database

	err := c.EachDatabase(ctx, func(db *notionapi.Database) error {
		if title, ok := extract.DatabaseTitle(db); ok {
			databases = append(databases, models.Database{
				ID:    string(db.ID),
				Title: &title,
			})
			return nil
		}

		logger.Warn("Database is faulty", map[string]interface{}{
			"database_id": displayID(string(db.ID)),
		})
		if name, err := c.RenameFromParent(ctx, db); err != nil {
			logger.Warn("Failed to rename faulty database", map[string]interface{}{
				"database_id": displayID(string(db.ID)),
				"error":       err.Error(),
			})
		} else if name != "" {
			logger.Info("Renamed faulty database", map[string]interface{}{
				"database_id": displayID(string(db.ID)),
				"title":       name,
			})
		}
		faulty = append(faulty, models.Database{ID: string(db.ID)})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return databases, faulty, nil
}

// Pages materializes all pages of a database as flattened records. Pages
// whose title resolves from neither the "Name" nor the "Title" property are
// logged and dropped, not fatal to the batch. With a non-nil since, pages
// created before it are filtered out.
func (c *Client) Pages(ctx context.Context, databaseID string, since *time.Time) ([]models.Page, error) {
	var pages []models.Page

	err := c.EachPage(ctx, databaseID, false, func(page *notionapi.Page) error {
		record, ok := extract.PageRecord(page)
		if !ok {
			logger.Warn("Page is faulty", map[string]interface{}{
				"page_id": displayID(string(page.ID)),
			})
			return nil
		}
		if since != nil {
			created := extract.CreatedAt(page)
			if created == nil || created.Before(*since) {
				return nil
			}
		}
		pages = append(pages, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// PageText returns the plain text of a page's paragraph blocks joined by
// blank lines. Non-paragraph blocks are ignored.
func (c *Client) PageText(ctx context.Context, pageID string) (string, error) {
	var parts []string

	err := c.EachBlock(ctx, pageID, func(block notionapi.Block) error {
		paragraph, ok := block.(*notionapi.ParagraphBlock)
		if !ok {
			return nil
		}
		for _, text := range paragraph.Paragraph.RichText {
			parts = append(parts, text.PlainText)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.Join(parts, "\n\n"), nil
}

// TitleToIDMapping builds a title-to-page-id mapping for a reference database,
// used to resolve relation targets by name.
func (c *Client) TitleToIDMapping(ctx context.Context, databaseID string) (map[string]string, error) {
	pages, err := c.Pages(ctx, databaseID, nil)
	if err != nil {
		return nil, err
	}
	mapping := make(map[string]string, len(pages))
	for _, page := range pages {
		mapping[page.Title] = page.ID
	}
	return mapping, nil
}

// displayID strips the dashes from an id for log output only; stored ids are
// never mutated.
func displayID(id string) string {
	return strings.ReplaceAll(id, "-", "")
}
