package docs

// Document is the tool-facing view of a Google Doc.
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text,omitempty"`
}
