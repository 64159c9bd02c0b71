// Package drive wraps the Google Drive API with file search, read, create,
// and trash operations.
package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"workspacemcp/internal/google"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// maxReadBytes caps file downloads so a tool call cannot pull an
	// arbitrarily large file into memory.
	maxReadBytes = 10 << 20

	fileFields = "id, name, mimeType, modifiedTime, size, webViewLink"

	mimeTypeDocument    = "application/vnd.google-apps.document"
	mimeTypeSpreadsheet = "application/vnd.google-apps.spreadsheet"
	mimeTypePresentation = "application/vnd.google-apps.presentation"
)

// Client wraps the Google Drive API service.
type Client struct {
	service *drive.Service
}

// NewClient creates a Drive client authenticated with the stored
// credentials. Returns google.ErrNotAuthorized when no credentials are
// stored.
func NewClient(ctx context.Context, store *google.Store) (*Client, error) {
	httpClient, err := google.NewHTTPClient(ctx, store)
	if err != nil {
		return nil, err
	}

	service, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Client{service: service}, nil
}

// SearchFiles returns files matching the given Drive query string. Trashed
// files are excluded unless the query asks for them.
func (c *Client) SearchFiles(ctx context.Context, query string, pageSize int64) ([]File, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	if !strings.Contains(query, "trashed") {
		query = fmt.Sprintf("(%s) and trashed = false", query)
	}

	resp, err := c.service.Files.List().
		Q(query).
		PageSize(pageSize).
		Fields("files(" + fileFields + ")").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search files: %w", err)
	}

	files := make([]File, 0, len(resp.Files))
	for _, f := range resp.Files {
		files = append(files, fileFromAPI(f))
	}
	return files, nil
}

// GetFileMetadata retrieves metadata for a single file.
func (c *Client) GetFileMetadata(ctx context.Context, fileID string) (*File, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	f, err := c.service.Files.Get(fileID).
		Fields(fileFields).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get file metadata %s: %w", fileID, err)
	}

	file := fileFromAPI(f)
	return &file, nil
}

// ReadFile returns a file's content as text. Google Workspace documents are
// exported as plain text or CSV; everything else is downloaded as-is.
func (c *Client) ReadFile(ctx context.Context, fileID string) (*FileContent, error) {
	meta, err := c.GetFileMetadata(ctx, fileID)
	if err != nil {
		return nil, err
	}

	var body io.ReadCloser
	if exportMime := exportMimeType(meta.MimeType); exportMime != "" {
		resp, err := c.service.Files.Export(fileID, exportMime).Context(ctx).Download()
		if err != nil {
			return nil, fmt.Errorf("failed to export file %s: %w", fileID, err)
		}
		body = resp.Body
	} else {
		resp, err := c.service.Files.Get(fileID).Context(ctx).Download()
		if err != nil {
			return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
		}
		body = resp.Body
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxReadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read file content %s: %w", fileID, err)
	}

	return &FileContent{File: *meta, Content: string(data)}, nil
}

// CreateFile creates a file with the given name, MIME type, and content.
func (c *Client) CreateFile(ctx context.Context, name, mimeType, content string) (*File, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if mimeType == "" {
		mimeType = "text/plain"
	}

	f, err := c.service.Files.Create(&drive.File{Name: name, MimeType: mimeType}).
		Media(strings.NewReader(content)).
		Fields(fileFields).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	file := fileFromAPI(f)
	return &file, nil
}

// TrashFile moves a file to the trash. Trashing is reversible in the Drive
// UI, which is why the tools expose it instead of permanent deletion.
func (c *Client) TrashFile(ctx context.Context, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("fileID is required")
	}

	_, err := c.service.Files.Update(fileID, &drive.File{Trashed: true}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to trash file %s: %w", fileID, err)
	}

	return nil
}

// exportMimeType maps Google Workspace document types to a text export
// format. Returns "" for files that are downloaded directly.
func exportMimeType(mimeType string) string {
	switch mimeType {
	case mimeTypeDocument, mimeTypePresentation:
		return "text/plain"
	case mimeTypeSpreadsheet:
		return "text/csv"
	default:
		return ""
	}
}

func fileFromAPI(f *drive.File) File {
	return File{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		ModifiedTime: f.ModifiedTime,
		Size:         f.Size,
		WebViewLink:  f.WebViewLink,
	}
}
