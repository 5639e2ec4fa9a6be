package library

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBooks() []Book {
	return []Book{
		{ID: 9, Title: "Zen", Author: "Pirsig", DueDate: NoDueDate},
		{ID: 2, Title: "Emma", Author: "Austen", Issued: true, IssuedTo: "Stud1", DueDate: "2024-03-24", TimesIssued: 4},
		{ID: 5, Title: "Dune", Author: "Herbert", DueDate: NoDueDate, TimesIssued: 1},
	}
}

// awkwardBooks carry the separators that broke the comma format. IDs do
// not overlap sampleBooks so both can be saved together.
func awkwardBooks() []Book {
	return []Book{
		{ID: 11, Title: "Eats, Shoots & Leaves", Author: "Truss, Lynne", DueDate: NoDueDate},
		{ID: 12, Title: "Line one\nline two", Author: "", Issued: true, IssuedTo: "O'Brien, Pat", DueDate: "2024-01-11", TimesIssued: 2},
		{ID: 13, Title: strings.Repeat("long title ", 30), Author: "Ünïcødé", DueDate: NoDueDate},
		{ID: 14, Title: "--- 12 book", Author: "title: fake", DueDate: NoDueDate},
	}
}

type codecFactory func(t *testing.T, path string) Codec

func codecFactories() map[string]codecFactory {
	return map[string]codecFactory{
		BackendSiser: func(t *testing.T, path string) Codec { return NewRecordFile(path) },
		BackendSQLite: func(t *testing.T, path string) Codec {
			c, err := NewSQLiteCodec(path)
			require.NoError(t, err)
			return c
		},
		BackendBolt: func(t *testing.T, path string) Codec {
			c, err := NewBoltCodec(path, 0)
			require.NoError(t, err)
			return c
		},
	}
}

func TestCodecRoundTrip(t *testing.T) {
	for name, open := range codecFactories() {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "data."+name)

			codec := open(t, path)
			books, err := codec.Load()
			require.NoError(t, err)
			assert.Empty(t, books, "fresh store loads empty")

			want := append(sampleBooks(), awkwardBooks()...)
			require.NoError(t, codec.Save(want))
			require.NoError(t, codec.Close())

			// reopen to make sure data really hit the disk
			codec = open(t, path)
			defer codec.Close()
			got, err := codec.Load()
			require.NoError(t, err)
			assert.Equal(t, want, got)

			// a shorter save replaces everything
			require.NoError(t, codec.Save(want[:1]))
			got, err = codec.Load()
			require.NoError(t, err)
			assert.Equal(t, want[:1], got)

			require.NoError(t, codec.Save(nil))
			got, err = codec.Load()
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestCatalogReopen(t *testing.T) {
	for name, open := range codecFactories() {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "data."+name)

			c, err := Open(open(t, path), WithClock(fixedClock{testNow}))
			require.NoError(t, err)
			require.NoError(t, c.AddBook(1, "A, with comma", "X"))
			require.NoError(t, c.AddBook(2, "B", "Y"))
			_, err = c.IssueBook(2, "Stud")
			require.NoError(t, err)
			want := c.Books()
			require.NoError(t, c.Close())

			c, err = Open(open(t, path))
			require.NoError(t, err)
			defer c.Close()
			assert.Equal(t, want, c.Books())
		})
	}
}

func TestNewCodec(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{"", BackendSiser, BackendLegacy, BackendSQLite, BackendBolt} {
		codec, err := NewCodec(backend, filepath.Join(dir, "x"+backend))
		require.NoError(t, err, backend)
		require.NoError(t, codec.Close())
	}

	_, err := NewCodec("csv", filepath.Join(dir, "y"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecordFileMissingIsEmpty(t *testing.T) {
	books, err := NewRecordFile(filepath.Join(t.TempDir(), "none.rec")).Load()
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestRecordFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.rec")
	require.NoError(t, os.WriteFile(path, []byte("--- 8 book\nid: abc\n"), 0o644))

	_, err := NewRecordFile(path).Load()
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestLegacyFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library_data.txt")
	codec := NewLegacyFile(path)

	require.NoError(t, codec.Save(sampleBooks()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "9,Zen,Pirsig,0,,N/A,0\n" +
		"2,Emma,Austen,1,Stud1,2024-03-24,4\n" +
		"5,Dune,Herbert,0,,N/A,1\n"
	assert.Equal(t, want, string(data))

	got, err := codec.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleBooks(), got)
}

func TestLegacyFileLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Book
		wantErr error
	}{
		{
			name:    "crlf and blank lines",
			content: "1,A,X,0,,N/A,0\r\n\n2,B,Y,1,Stud,2024-01-02,3\r\n",
			want: []Book{
				{ID: 1, Title: "A", Author: "X", DueDate: NoDueDate},
				{ID: 2, Title: "B", Author: "Y", Issued: true, IssuedTo: "Stud", DueDate: "2024-01-02", TimesIssued: 3},
			},
		},
		{name: "too many fields", content: "1,A,B,C,0,,N/A,0\n", wantErr: ErrMalformedRecord},
		{name: "bad id", content: "x,A,X,0,,N/A,0\n", wantErr: ErrMalformedRecord},
		{name: "bad flag", content: "1,A,X,yes,,N/A,0\n", wantErr: ErrMalformedRecord},
		{name: "bad count", content: "1,A,X,0,,N/A,many\n", wantErr: ErrMalformedRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "library_data.txt")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			got, err := NewLegacyFile(path).Load()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), ":1:", "error names the line")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLegacyFileRefusesSeparators(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library_data.txt")
	codec := NewLegacyFile(path)
	require.NoError(t, codec.Save(sampleBooks()))

	err := codec.Save(awkwardBooks())
	require.ErrorIs(t, err, ErrUnencodable)

	// the previous file is untouched
	got, err := codec.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleBooks(), got)
}

func TestLegacyFileMissingIsEmpty(t *testing.T) {
	books, err := NewLegacyFile(filepath.Join(t.TempDir(), "none.txt")).Load()
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestSQLiteCorruptSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT);
		INSERT INTO meta(key,value) VALUES('schema_version','abc');`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = NewSQLiteCodec(path)
	require.ErrorIs(t, err, ErrIOUnavailable)
	assert.Contains(t, err.Error(), "schema version")
}

func TestSQLiteReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	codec, err := NewSQLiteCodec(path)
	require.NoError(t, err)
	require.NoError(t, codec.Save(sampleBooks()))
	require.NoError(t, codec.Close())

	codec, err = NewSQLiteCodec(path)
	require.NoError(t, err)
	defer codec.Close()
	got, err := codec.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleBooks(), got)
}
