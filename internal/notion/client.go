package notion

import (
	"fmt"
	"os"

	"github.com/jomei/notionapi"
)

// Client wraps the Notion API client with the fetch and mutate operations
// this tool needs. All calls go through the NotionClient interface so they
// can be exercised against mocks.
type Client struct {
	client NotionClient
}

// New creates a new Notion client authenticated from the NOTION_TOKEN
// environment variable.
func New() (*Client, error) {
	token := os.Getenv("NOTION_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("NOTION_TOKEN is not set")
	}

	notionClient := notionapi.NewClient(notionapi.Token(token))
	return &Client{
		client: newNotionClientAdapter(notionClient),
	}, nil
}

// NewWithClient creates a Client over an explicit NotionClient. Used by tests.
func NewWithClient(client NotionClient) *Client {
	return &Client{client: client}
}
