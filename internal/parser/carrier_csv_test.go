package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestReadRows(t *testing.T) {
	content := "Origin,Destination,Rate\nToronto, Montreal ,125.50\n\n,,\nOttawa,\"Quebec, QC\",99\n"

	rows, err := ReadRows(strings.NewReader(content), Options{})
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Origin", "Destination", "Rate"}, rows[0])
	assert.Equal(t, []string{"Toronto", "Montreal", "125.50"}, rows[1])
	assert.Equal(t, "Quebec, QC", rows[2][1])
}

func TestReadRowsDelimiters(t *testing.T) {
	tests := []struct {
		name      string
		delimiter string
		content   string
	}{
		{"semicolon", ";", "a;b;c\n1;2;3\n"},
		{"tab word", "tab", "a\tb\tc\n1\t2\t3\n"},
		{"escaped tab", `\t`, "a\tb\tc\n1\t2\t3\n"},
		{"pipe", "|", "a|b|c\n1|2|3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ReadRows(strings.NewReader(tt.content), Options{Delimiter: tt.delimiter})
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, []string{"1", "2", "3"}, rows[1])
		})
	}
}

func TestReadRowsInvalidDelimiter(t *testing.T) {
	_, err := ReadRows(strings.NewReader("a,b"), Options{Delimiter: ",,"})
	assert.True(t, errors.Is(err, ErrInvalidDelimiter))

	_, err = ReadRows(strings.NewReader("a,b"), Options{Delimiter: `"`})
	assert.True(t, errors.Is(err, ErrInvalidDelimiter))
}

func TestReadRowsEncodings(t *testing.T) {
	latin, err := charmap.Windows1252.NewEncoder().String("Origin,Destination\nMontréal,Québec\n")
	require.NoError(t, err)

	rows, err := ReadRows(strings.NewReader(latin), Options{Encoding: "Windows-1252"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Montréal", "Québec"}, rows[1])

	bom := "\xef\xbb\xbfOrigin,Rate\nA,1\n"
	rows, err = ReadRows(strings.NewReader(bom), Options{Encoding: "utf-8"})
	require.NoError(t, err)
	assert.Equal(t, "Origin", rows[0][0])

	_, err = ReadRows(strings.NewReader("a"), Options{Encoding: "ebcdic"})
	assert.True(t, errors.Is(err, ErrUnsupportedEncoding))
}

func TestReadRowsEmpty(t *testing.T) {
	_, err := ReadRows(strings.NewReader("\n , \n"), Options{})
	assert.True(t, errors.Is(err, ErrEmptyFile))

	_, err = ReadBytes(nil, Options{})
	assert.True(t, errors.Is(err, ErrEmptyFile))
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"comma", "a,b,c\n1,2,3\n", ","},
		{"semicolon with decimal commas", "a;b;c\n1,5;2,5;3\n4;5;6\n", ";"},
		{"tab", "a\tb\n1\t2\n", "\t"},
		{"pipe", "a|b|c\n1|2|3\n", "|"},
		{"single column", "a\n1\n", ","},
		{"empty", "", ","},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SniffDelimiter([]byte(tt.content)))
		})
	}
}

func TestReadBytesSniffs(t *testing.T) {
	rows, err := ReadBytes([]byte("a;b\n1;2\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, rows[1])
}
