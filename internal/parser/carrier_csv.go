// Package parser decodes carrier-supplied CSV files into rows of cells.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrEmptyFile           = errors.New("file is empty")
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
	ErrInvalidDelimiter    = errors.New("delimiter must be a single character")
)

// decoders maps accepted encoding names to their decoders.
var decoders = map[string]encoding.Encoding{
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
}

// Options control how a carrier file is decoded.
type Options struct {
	Delimiter string
	Encoding  string
}

// ReadRows decodes r into rows of cells. Rows whose cells are all blank
// are dropped; rows may have different lengths.
func ReadRows(r io.Reader, opts Options) ([][]string, error) {
	comma, err := delimiterRune(opts.Delimiter)
	if err != nil {
		return nil, err
	}
	decoded, err := decodeReader(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows := make([][]string, 0)
	lineNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			return nil, fmt.Errorf("reading CSV record %d: %w", lineNum, err)
		}
		if isBlank(record) {
			continue
		}
		rows = append(rows, trimCells(record))
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

// ReadBytes is ReadRows over an in-memory file.
func ReadBytes(data []byte, opts Options) ([][]string, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if opts.Delimiter == "" {
		opts.Delimiter = SniffDelimiter(data)
	}
	return ReadRows(bytes.NewReader(data), opts)
}

func decodeReader(r io.Reader, enc string) (io.Reader, error) {
	name := strings.ToLower(strings.TrimSpace(enc))
	switch name {
	case "", "utf-8", "utf8":
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	}
	e, ok := decoders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, enc)
	}
	return transform.NewReader(r, e.NewDecoder()), nil
}

func delimiterRune(d string) (rune, error) {
	switch d {
	case "":
		return ',', nil
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(d) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDelimiter, d)
	}
	r, _ := utf8.DecodeRuneInString(d)
	if r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDelimiter, d)
	}
	return r, nil
}

func isBlank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func trimCells(record []string) []string {
	for i, c := range record {
		record[i] = strings.TrimSpace(c)
	}
	return record
}
