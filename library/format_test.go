package library

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyBook(t *testing.T) {
	b := Book{ID: 12, Title: "A Very Long Title That Overflows", Author: "Someone", Issued: true, IssuedTo: "Stud", DueDate: "2024-03-24", TimesIssued: 2}
	row := PrettyBook(b)

	assert.True(t, strings.HasPrefix(row, "12    A Very Long Titl..."), row)
	assert.Contains(t, row, "Issued    Stud")
	assert.Contains(t, row, "2024-03-24")

	hdr := strings.Split(PrettyHeader(), "\n")
	require.Len(t, hdr, 2)
	assert.True(t, strings.HasPrefix(hdr[0], "ID    Title"))
	assert.Equal(t, strings.Repeat("-", 96), hdr[1])
}

func TestPrettyBookFlattensNewlines(t *testing.T) {
	row := PrettyBook(Book{ID: 1, Title: "two\nlines", DueDate: NoDueDate})
	assert.NotContains(t, row, "\n")
	assert.Contains(t, row, "two lines")
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncateString("abcdef", 2))
	assert.Equal(t, "Ünï...", truncateString("Ünïcødé", 6))
}

func TestExportJSON(t *testing.T) {
	data, err := ExportJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	data, err = ExportJSON(sampleBooks())
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {\n", "output is indented")

	var got []Book
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, sampleBooks(), got)
}
