package library

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/pretty"
)

const rowFormat = "%-6s%-20s%-20s%-10s%-15s%-15s%-10s"

// PrettyHeader is the column header printed above PrettyBook rows,
// followed by a divider line.
func PrettyHeader() string {
	hdr := fmt.Sprintf(rowFormat, "ID", "Title", "Author", "Status", "Issued To", "Due Date", "Times Issued")
	return hdr + "\n" + strings.Repeat("-", 96)
}

// PrettyBook formats a book for lists.
func PrettyBook(b Book) string {
	return fmt.Sprintf(rowFormat,
		fmt.Sprint(b.ID),
		truncateString(b.Title, 19),
		truncateString(b.Author, 19),
		b.Status(),
		truncateString(b.IssuedTo, 14),
		b.DueDate,
		fmt.Sprint(b.TimesIssued))
}

// ExportJSON renders books as indented JSON. A nil slice becomes [].
func ExportJSON(books []Book) ([]byte, error) {
	if books == nil {
		books = []Book{}
	}
	data, err := json.Marshal(books)
	if err != nil {
		return nil, err
	}
	return pretty.Pretty(data), nil
}

// truncateString shortens s to maxLen runes, marking the cut with "...".
// Newlines are flattened so a row stays on one line.
func truncateString(s string, maxLen int) string {
	s = strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
