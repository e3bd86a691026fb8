package notion

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/jomei/notionapi"

	"notion-assistant/internal/notion/mock_notion"
)

func newMockedClient(t *testing.T) (*Client, *mock_notion.MockNotionClient, *mock_notion.MockSearchService, *mock_notion.MockDatabaseService, *mock_notion.MockPageService, *mock_notion.MockBlockService) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockClient := mock_notion.NewMockNotionClient(ctrl)
	mockSearch := mock_notion.NewMockSearchService(ctrl)
	mockDatabase := mock_notion.NewMockDatabaseService(ctrl)
	mockPage := mock_notion.NewMockPageService(ctrl)
	mockBlock := mock_notion.NewMockBlockService(ctrl)

	mockClient.EXPECT().Search().Return(mockSearch).AnyTimes()
	mockClient.EXPECT().Database().Return(mockDatabase).AnyTimes()
	mockClient.EXPECT().Page().Return(mockPage).AnyTimes()
	mockClient.EXPECT().Block().Return(mockBlock).AnyTimes()

	return NewWithClient(mockClient), mockClient, mockSearch, mockDatabase, mockPage, mockBlock
}

func titledDatabase(id, title string) *notionapi.Database {
	return &notionapi.Database{
		Object: "database",
		ID:     notionapi.ObjectID(id),
		Title: []notionapi.RichText{
			{
				PlainText: title,
				Text:      &notionapi.Text{Content: title},
			},
		},
	}
}

func namedPage(id, title string) notionapi.Page {
	return notionapi.Page{
		Object: "page",
		ID:     notionapi.ObjectID(id),
		URL:    "https://www.notion.so/" + id,
		Properties: notionapi.Properties{
			"Name": &notionapi.TitleProperty{
				Title: []notionapi.RichText{{PlainText: title}},
			},
		},
	}
}

func TestEachDatabasePagination(t *testing.T) {
	client, _, mockSearch, _, _, _ := newMockedClient(t)
	ctx := context.Background()

	mockSearch.EXPECT().Do(ctx, gomock.Any()).Return(&notionapi.SearchResponse{
		Results:    []notionapi.Object{titledDatabase("db-1", "First")},
		HasMore:    true,
		NextCursor: notionapi.Cursor("cursor-1"),
	}, nil)
	mockSearch.EXPECT().Do(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, req *notionapi.SearchRequest) (*notionapi.SearchResponse, error) {
			if req.StartCursor != notionapi.Cursor("cursor-1") {
				t.Errorf("Expected cursor-1, got %q", req.StartCursor)
			}
			return &notionapi.SearchResponse{
				Results: []notionapi.Object{titledDatabase("db-2", "Second")},
			}, nil
		})

	var ids []string
	err := client.EachDatabase(ctx, func(db *notionapi.Database) error {
		ids = append(ids, string(db.ID))
		return nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "db-1" || ids[1] != "db-2" {
		t.Errorf("Expected [db-1 db-2], got %v", ids)
	}
}

func TestEachDatabaseFailFast(t *testing.T) {
	client, _, mockSearch, _, _, _ := newMockedClient(t)
	ctx := context.Background()

	mockSearch.EXPECT().Do(ctx, gomock.Any()).Return(nil, errors.New("boom"))

	err := client.EachDatabase(ctx, func(*notionapi.Database) error { return nil })
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestDatabasesSeparatesFaulty(t *testing.T) {
	client, _, mockSearch, mockDatabase, mockPage, _ := newMockedClient(t)
	ctx := context.Background()

	faultyDB := &notionapi.Database{
		Object: "database",
		ID:     "db-2",
		Parent: notionapi.Parent{
			Type:   "page_id",
			PageID: "parent-1",
		},
	}

	mockSearch.EXPECT().Do(ctx, gomock.Any()).Return(&notionapi.SearchResponse{
		Results: []notionapi.Object{titledDatabase("db-1", "Old Media Vault"), faultyDB},
	}, nil)

	// Rename recovery for the faulty database.
	parent := namedPage("parent-1", "")
	parent.Properties = notionapi.Properties{
		"Title": &notionapi.TitleProperty{
			Title: []notionapi.RichText{{PlainText: "Media"}},
		},
	}
	mockPage.EXPECT().Get(ctx, notionapi.PageID("parent-1")).Return(&parent, nil)
	mockDatabase.EXPECT().Update(ctx, notionapi.DatabaseID("db-2"), gomock.Any()).Return(faultyDB, nil)

	databases, faulty, err := client.Databases(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(databases) != 1 || databases[0].ID != "db-1" {
		t.Errorf("Expected one good database db-1, got %v", databases)
	}
	if databases[0].Title == nil || *databases[0].Title != "Old Media Vault" {
		t.Errorf("Expected title Old Media Vault, got %v", databases[0].Title)
	}
	if len(faulty) != 1 || faulty[0].ID != "db-2" {
		t.Errorf("Expected one faulty database db-2, got %v", faulty)
	}
	if faulty[0].Title != nil {
		t.Errorf("Expected faulty database without title, got %v", *faulty[0].Title)
	}
}

func TestEachPageFilter(t *testing.T) {
	client, _, _, mockDatabase, _, _ := newMockedClient(t)
	ctx := context.Background()

	mockDatabase.EXPECT().Query(ctx, notionapi.DatabaseID("db-1"), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			filter, ok := req.Filter.(notionapi.PropertyFilter)
			if !ok {
				t.Fatal("Expected a property filter on the query")
			}
			if filter.Property != "is_ai_analyzed" {
				t.Errorf("Expected is_ai_analyzed filter, got %q", filter.Property)
			}
			if filter.Checkbox == nil || !filter.Checkbox.DoesNotEqual {
				t.Error("Expected checkbox does_not_equal true condition")
			}
			return &notionapi.DatabaseQueryResponse{
				Results: []notionapi.Page{namedPage("page-1", "A Page")},
			}, nil
		})

	var count int
	err := client.EachPage(ctx, "db-1", true, func(*notionapi.Page) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 page, got %d", count)
	}
}

func TestPagesDropsFaulty(t *testing.T) {
	client, _, _, mockDatabase, _, _ := newMockedClient(t)
	ctx := context.Background()

	untitled := notionapi.Page{
		Object:     "page",
		ID:         "page-2",
		URL:        "https://www.notion.so/page-2",
		Properties: notionapi.Properties{},
	}

	mockDatabase.EXPECT().Query(ctx, notionapi.DatabaseID("db-1"), gomock.Any()).Return(&notionapi.DatabaseQueryResponse{
		Results: []notionapi.Page{namedPage("page-1", "Good Page"), untitled},
	}, nil)

	pages, err := client.Pages(ctx, "db-1", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("Expected 1 page, got %d", len(pages))
	}
	if pages[0].ID != "page-1" || pages[0].Title != "Good Page" {
		t.Errorf("Unexpected page record: %+v", pages[0])
	}
}

func TestPageText(t *testing.T) {
	client, _, _, _, _, mockBlock := newMockedClient(t)
	ctx := context.Background()

	paragraph := func(text string) notionapi.Block {
		return &notionapi.ParagraphBlock{
			BasicBlock: notionapi.BasicBlock{Object: "block", Type: notionapi.BlockTypeParagraph},
			Paragraph: notionapi.Paragraph{
				RichText: []notionapi.RichText{{PlainText: text}},
			},
		}
	}
	heading := &notionapi.Heading1Block{
		BasicBlock: notionapi.BasicBlock{Object: "block", Type: notionapi.BlockTypeHeading1},
		Heading1: notionapi.Heading{
			RichText: []notionapi.RichText{{PlainText: "Skipped"}},
		},
	}

	mockBlock.EXPECT().GetChildren(ctx, notionapi.BlockID("page-1"), gomock.Any()).Return(&notionapi.GetChildrenResponse{
		Results:    []notionapi.Block{paragraph("AI Analysis"), heading},
		HasMore:    true,
		NextCursor: "cursor-1",
	}, nil)
	mockBlock.EXPECT().GetChildren(ctx, notionapi.BlockID("page-1"), gomock.Any()).Return(&notionapi.GetChildrenResponse{
		Results: []notionapi.Block{paragraph("main points")},
	}, nil)

	text, err := client.PageText(ctx, "page-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := "AI Analysis\n\nmain points"
	if text != want {
		t.Errorf("Expected %q, got %q", want, text)
	}
}

func TestTitleToIDMapping(t *testing.T) {
	client, _, _, mockDatabase, _, _ := newMockedClient(t)
	ctx := context.Background()

	mockDatabase.EXPECT().Query(ctx, notionapi.DatabaseID("areas-db"), gomock.Any()).Return(&notionapi.DatabaseQueryResponse{
		Results: []notionapi.Page{namedPage("area-1", "Health"), namedPage("area-2", "Finance")},
	}, nil)

	mapping, err := client.TitleToIDMapping(ctx, "areas-db")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if mapping["Health"] != "area-1" || mapping["Finance"] != "area-2" {
		t.Errorf("Unexpected mapping: %v", mapping)
	}
}
