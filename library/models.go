package library

import "strings"

// NoDueDate is stored in DueDate while a book is on the shelf.
const NoDueDate = "N/A"

// Book is one catalog entry and its current circulation state.
type Book struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Issued      bool   `json:"issued"`
	IssuedTo    string `json:"issued_to"`
	DueDate     string `json:"due_date"`
	TimesIssued int    `json:"times_issued"`
}

func newBook(id int64, title, author string) *Book {
	return &Book{
		ID:      id,
		Title:   title,
		Author:  author,
		DueDate: NoDueDate,
	}
}

// Status is the human readable circulation state.
func (b Book) Status() string {
	if b.Issued {
		return "Issued"
	}
	return "Available"
}

// SortKey selects the ordering used by ListAll.
type SortKey int

const (
	SortByID SortKey = iota
	SortByTitle
)

func (k SortKey) String() string {
	if k == SortByTitle {
		return "title"
	}
	return "id"
}

// ParseSortKey accepts "I"/"id" and "T"/"title" in any case. Anything else
// yields SortByID with ok set to false.
func ParseSortKey(s string) (key SortKey, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "i", "id":
		return SortByID, true
	case "t", "title":
		return SortByTitle, true
	default:
		return SortByID, false
	}
}
