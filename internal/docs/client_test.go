package docs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

func newFakeClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	service, err := docs.NewService(context.Background(),
		option.WithoutAuthentication(),
		option.WithEndpoint(srv.URL),
	)
	if err != nil {
		t.Fatalf("failed to create Docs service: %v", err)
	}
	return &Client{service: service}
}

func TestGetDocument(t *testing.T) {
	client := newFakeClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/documents/doc123") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("includeTabsContent") != "true" {
			t.Error("includeTabsContent not requested")
		}
		_ = json.NewEncoder(w).Encode(&docs.Document{
			DocumentId: "doc123",
			Title:      "Notes",
			Body: &docs.Body{
				Content: []*docs.StructuralElement{paragraph("Hello\n")},
			},
		})
	}))

	doc, err := client.GetDocument(context.Background(), "doc123")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if doc.ID != "doc123" || doc.Title != "Notes" || doc.Text != "Hello\n" {
		t.Errorf("GetDocument() = %+v", doc)
	}
}

func TestGetDocumentRequiresID(t *testing.T) {
	client := &Client{}
	if _, err := client.GetDocument(context.Background(), ""); err == nil {
		t.Error("GetDocument(\"\") expected an error")
	}
}

func TestCreateDocumentWithBody(t *testing.T) {
	var batchUpdates int
	client := newFakeClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/documents"):
			_ = json.NewEncoder(w).Encode(&docs.Document{DocumentId: "new-doc", Title: "Report"})
		case strings.Contains(r.URL.Path, ":batchUpdate"):
			batchUpdates++
			var req docs.BatchUpdateDocumentRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if len(req.Requests) != 1 || req.Requests[0].InsertText == nil {
				t.Errorf("unexpected batch update: %+v", req.Requests)
			} else if req.Requests[0].InsertText.Text != "initial body" {
				t.Errorf("insert text = %q", req.Requests[0].InsertText.Text)
			}
			_ = json.NewEncoder(w).Encode(&docs.BatchUpdateDocumentResponse{})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	}))

	doc, err := client.CreateDocument(context.Background(), "Report", "initial body")
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if doc.ID != "new-doc" || doc.Title != "Report" {
		t.Errorf("CreateDocument() = %+v", doc)
	}
	if batchUpdates != 1 {
		t.Errorf("batch update called %d times, want 1", batchUpdates)
	}
}

func TestCreateDocumentWithoutBodySkipsAppend(t *testing.T) {
	client := newFakeClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, ":batchUpdate") {
			t.Error("append requested for empty body")
		}
		_ = json.NewEncoder(w).Encode(&docs.Document{DocumentId: "new-doc", Title: "Empty"})
	}))

	if _, err := client.CreateDocument(context.Background(), "Empty", ""); err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
}

func TestAppendTextValidation(t *testing.T) {
	client := &Client{}
	if err := client.AppendText(context.Background(), "", "text"); err == nil {
		t.Error("AppendText without documentID expected an error")
	}
	if err := client.AppendText(context.Background(), "doc123", ""); err == nil {
		t.Error("AppendText without text expected an error")
	}
}
