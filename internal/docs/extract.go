package docs

import (
	"strings"

	docs "google.golang.org/api/docs/v1"
)

// extractText flattens a document to plain text. Documents created after the
// multi-tab launch carry their content in Tabs; legacy documents use Body.
func extractText(doc *docs.Document) string {
	var sb strings.Builder

	if len(doc.Tabs) > 0 {
		for _, tab := range doc.Tabs {
			extractTab(&sb, tab)
		}
	} else if doc.Body != nil {
		extractContent(&sb, doc.Body.Content)
	}

	return sb.String()
}

func extractTab(sb *strings.Builder, tab *docs.Tab) {
	if tab.DocumentTab != nil && tab.DocumentTab.Body != nil {
		extractContent(sb, tab.DocumentTab.Body.Content)
	}
	for _, child := range tab.ChildTabs {
		extractTab(sb, child)
	}
}

func extractContent(sb *strings.Builder, content []*docs.StructuralElement) {
	for _, elem := range content {
		switch {
		case elem.Paragraph != nil:
			for _, pe := range elem.Paragraph.Elements {
				if pe.TextRun != nil {
					sb.WriteString(pe.TextRun.Content)
				}
			}
		case elem.Table != nil:
			for _, row := range elem.Table.TableRows {
				for _, cell := range row.TableCells {
					extractContent(sb, cell.Content)
				}
			}
		case elem.TableOfContents != nil:
			extractContent(sb, elem.TableOfContents.Content)
		}
	}
}
