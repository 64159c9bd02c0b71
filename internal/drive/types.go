package drive

// File is the tool-facing view of a Drive file.
type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	Size         int64  `json:"size,omitempty"`
	WebViewLink  string `json:"webViewLink,omitempty"`
}

// FileContent is a file together with its textual content.
type FileContent struct {
	File
	Content string `json:"content"`
}
