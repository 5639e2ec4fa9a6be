package library

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/kjk/common/atomicfile"
)

const legacyFields = 7

// LegacyFile reads and writes the older comma separated data file:
//
//	id,title,author,issued(0|1),issuedTo,dueDate,timesIssued
//
// The format has no escaping, so Save refuses text containing a comma or a
// line break instead of writing a file it could not read back.
type LegacyFile struct {
	path string
}

func NewLegacyFile(path string) *LegacyFile {
	return &LegacyFile{path: path}
}

func (f *LegacyFile) Close() error { return nil }

// Check reports whether b fits the comma format.
func (f *LegacyFile) Check(b Book) error { return legacyEncodable(b) }

// Save overwrites the file with one line per book.
func (f *LegacyFile) Save(books []Book) error {
	for _, b := range books {
		if err := legacyEncodable(b); err != nil {
			return err
		}
	}
	return writeFileAtomically(f.path, func(af *atomicfile.File) error {
		w := bufio.NewWriter(af)
		for _, b := range books {
			fmt.Fprintf(w, "%d,%s,%s,%s,%s,%s,%d\n",
				b.ID, b.Title, b.Author, boolDigit(b.Issued), b.IssuedTo, b.DueDate, b.TimesIssued)
		}
		return w.Flush()
	})
}

func legacyEncodable(b Book) error {
	for _, s := range []string{b.Title, b.Author, b.IssuedTo, b.DueDate} {
		if strings.ContainsAny(s, ",\r\n") {
			return fmt.Errorf("book %d: %q: %w", b.ID, s, ErrUnencodable)
		}
	}
	return nil
}

// Load parses the file line by line and stops at the first malformed line.
// Blank lines are ignored.
func (f *LegacyFile) Load() ([]Book, error) {
	file, err := openForLoad(f.path)
	if err != nil || file == nil {
		return nil, err
	}
	defer file.Close()

	var books []Book
	sc := bufio.NewScanner(file)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		b, err := parseLegacyLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", f.path, lineNo, err)
		}
		books = append(books, b)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrIOUnavailable, f.path, err)
	}
	return books, nil
}

func parseLegacyLine(line string) (Book, error) {
	var b Book
	parts := strings.Split(line, ",")
	if len(parts) != legacyFields {
		return b, fmt.Errorf("%w: want %d fields, got %d", ErrMalformedRecord, legacyFields, len(parts))
	}

	id, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return b, fmt.Errorf("%w: id: %v", ErrMalformedRecord, err)
	}
	issued, err := parseBoolDigit(strings.TrimSpace(parts[3]))
	if err != nil {
		return b, err
	}
	times, err := strconv.Atoi(strings.TrimSpace(parts[6]))
	if err != nil {
		return b, fmt.Errorf("%w: times issued: %v", ErrMalformedRecord, err)
	}

	b = Book{
		ID:          id,
		Title:       parts[1],
		Author:      parts[2],
		Issued:      issued,
		IssuedTo:    parts[4],
		DueDate:     parts[5],
		TimesIssued: times,
	}
	return b, nil
}
