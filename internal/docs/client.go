// Package docs wraps the Google Docs API with the small set of document
// operations the MCP tools expose.
package docs

import (
	"context"
	"fmt"

	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"

	"workspacemcp/internal/google"
)

// Client wraps the Google Docs API service.
type Client struct {
	service *docs.Service
}

// NewClient creates a Docs client authenticated with the stored credentials.
// Returns google.ErrNotAuthorized when no credentials are stored.
func NewClient(ctx context.Context, store *google.Store) (*Client, error) {
	httpClient, err := google.NewHTTPClient(ctx, store)
	if err != nil {
		return nil, err
	}

	service, err := docs.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}

	return &Client{service: service}, nil
}

// GetDocument retrieves a document and extracts its text content.
// Multi-tab documents are flattened tab by tab.
func (c *Client) GetDocument(ctx context.Context, documentID string) (*Document, error) {
	if documentID == "" {
		return nil, fmt.Errorf("documentID is required")
	}

	doc, err := c.service.Documents.Get(documentID).
		IncludeTabsContent(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", documentID, err)
	}

	return &Document{
		ID:    doc.DocumentId,
		Title: doc.Title,
		Text:  extractText(doc),
	}, nil
}

// CreateDocument creates a new document with the given title and optional
// initial body text.
func (c *Client) CreateDocument(ctx context.Context, title, body string) (*Document, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	doc, err := c.service.Documents.Create(&docs.Document{Title: title}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	if body != "" {
		if err := c.AppendText(ctx, doc.DocumentId, body); err != nil {
			return nil, err
		}
	}

	return &Document{ID: doc.DocumentId, Title: doc.Title, Text: body}, nil
}

// AppendText appends text at the end of the document body.
func (c *Client) AppendText(ctx context.Context, documentID, text string) error {
	if documentID == "" {
		return fmt.Errorf("documentID is required")
	}
	if text == "" {
		return fmt.Errorf("text is required")
	}

	req := &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{{
			InsertText: &docs.InsertTextRequest{
				Text: text,
				// An empty segment ID targets the end of the body.
				EndOfSegmentLocation: &docs.EndOfSegmentLocation{},
			},
		}},
	}

	_, err := c.service.Documents.BatchUpdate(documentID, req).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append text to document %s: %w", documentID, err)
	}

	return nil
}
