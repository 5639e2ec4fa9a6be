package library

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kjk/common/atomicfile"
	"github.com/kjk/common/siser"
)

// Codec reads and writes the full book collection. Implementations must
// preserve order across a Save/Load round-trip.
type Codec interface {
	Load() ([]Book, error)
	Save(books []Book) error
	Close() error
}

// Checker is implemented by codecs that cannot store every Book. Check
// returns ErrUnencodable for a book that Save would refuse, so callers can
// reject it before touching memory.
type Checker interface {
	Check(b Book) error
}

// Backend names accepted by NewCodec.
const (
	BackendSiser  = "siser"
	BackendLegacy = "legacy"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// NewCodec opens the codec for backend at path.
func NewCodec(backend, path string) (Codec, error) {
	switch backend {
	case BackendSiser, "":
		return NewRecordFile(path), nil
	case BackendLegacy:
		return NewLegacyFile(path), nil
	case BackendSQLite:
		return NewSQLiteCodec(path)
	case BackendBolt:
		return NewBoltCodec(path, time.Second)
	default:
		return nil, fmt.Errorf("unknown backend %q: %w", backend, ErrInvalidInput)
	}
}

// ensureDir creates the parent directory of path so first-run succeeds.
func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create dir: %v", ErrIOUnavailable, err)
		}
	}
	return nil
}

// writeFileAtomically replaces path with whatever write produces. On error
// the previous file is left in place.
func writeFileAtomically(path string, write func(f *atomicfile.File) error) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := atomicfile.New(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIOUnavailable, err)
	}
	// drops the temp file unless Close below already renamed it
	defer f.RemoveIfNotClosed()

	if err := write(f); err != nil {
		return fmt.Errorf("%w: %w", ErrIOUnavailable, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrIOUnavailable, err)
	}
	return nil
}

// openForLoad opens path for reading. A missing file yields (nil, nil).
func openForLoad(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIOUnavailable, err)
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// siser record file
// ---------------------------------------------------------------------------

const bookRecordName = "book"

// RecordFile stores one siser record per book. siser length-prefixes any
// value that is empty, long or not printable ASCII, so titles and authors
// may contain commas and newlines.
type RecordFile struct {
	path string
}

func NewRecordFile(path string) *RecordFile {
	return &RecordFile{path: path}
}

func (f *RecordFile) Close() error { return nil }

// Save overwrites the file with every book in order.
func (f *RecordFile) Save(books []Book) error {
	return writeFileAtomically(f.path, func(af *atomicfile.File) error {
		w := siser.NewWriter(af)
		w.NoTimestamp = true
		rec := &siser.Record{Name: bookRecordName}
		for _, b := range books {
			err := rec.Write(
				"id", strconv.FormatInt(b.ID, 10),
				"title", b.Title,
				"author", b.Author,
				"issued", boolDigit(b.Issued),
				"issued_to", b.IssuedTo,
				"due_date", b.DueDate,
				"times_issued", strconv.Itoa(b.TimesIssued),
			)
			if err != nil {
				return err
			}
			if _, err := w.WriteRecord(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load reads every book record. Records with other names are skipped.
func (f *RecordFile) Load() ([]Book, error) {
	file, err := openForLoad(f.path)
	if err != nil || file == nil {
		return nil, err
	}
	defer file.Close()

	r := siser.NewReader(bufio.NewReader(file))
	r.NoTimestamp = true

	var books []Book
	for r.ReadNextRecord() {
		if r.Record.Name != bookRecordName {
			continue
		}
		b, err := bookFromRecord(r.Record)
		if err != nil {
			return nil, fmt.Errorf("%s: record at offset %d: %w", f.path, r.CurrRecordPos, err)
		}
		books = append(books, b)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", f.path, ErrMalformedRecord, err)
	}
	return books, nil
}

func bookFromRecord(rec *siser.ReadRecord) (Book, error) {
	var b Book
	get := func(key string) (string, error) {
		v, ok := rec.Get(key)
		if !ok {
			return "", fmt.Errorf("%w: missing %q", ErrMalformedRecord, key)
		}
		return v, nil
	}

	var (
		v   string
		err error
	)
	if v, err = get("id"); err != nil {
		return b, err
	}
	if b.ID, err = strconv.ParseInt(v, 10, 64); err != nil {
		return b, fmt.Errorf("%w: id: %v", ErrMalformedRecord, err)
	}
	if b.Title, err = get("title"); err != nil {
		return b, err
	}
	if b.Author, err = get("author"); err != nil {
		return b, err
	}
	if v, err = get("issued"); err != nil {
		return b, err
	}
	if b.Issued, err = parseBoolDigit(v); err != nil {
		return b, err
	}
	if b.IssuedTo, err = get("issued_to"); err != nil {
		return b, err
	}
	if b.DueDate, err = get("due_date"); err != nil {
		return b, err
	}
	if v, err = get("times_issued"); err != nil {
		return b, err
	}
	if b.TimesIssued, err = strconv.Atoi(v); err != nil {
		return b, fmt.Errorf("%w: times_issued: %v", ErrMalformedRecord, err)
	}
	return b, nil
}

func boolDigit(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func parseBoolDigit(s string) (bool, error) {
	switch s {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: issued flag %q", ErrMalformedRecord, s)
}
