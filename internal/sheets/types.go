package sheets

// Spreadsheet is the tool-facing view of a spreadsheet.
type Spreadsheet struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}
