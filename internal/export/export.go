// Package export encodes rate cards for download.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/jszwec/csvutil"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/carrier-rates/backend/internal/models"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatMsgpack Format = "msgpack"
)

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatMsgpack:
		return "application/msgpack"
	default:
		return "text/csv; charset=utf-8"
	}
}

// ParseFormat accepts "csv" and "msgpack"; empty means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatMsgpack:
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Encode writes card in format f to w.
func Encode(w io.Writer, card *models.RateCard, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, card.Records)
	case FormatMsgpack:
		return WriteMsgpack(w, card)
	}
	return fmt.Errorf("unsupported export format %q", f)
}

// Bytes is Encode into a buffer.
func Bytes(card *models.RateCard, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, card, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV writes one row per record with a header row. Custom fields are
// appended as "custom_<name>" columns in name order.
func WriteCSV(w io.Writer, records []models.RateRecord) error {
	cw := csv.NewWriter(w)

	customs := customNames(records)
	header, err := csvutil.Header(models.RateRecord{}, "csv")
	if err != nil {
		return fmt.Errorf("building CSV header: %w", err)
	}
	for _, name := range customs {
		header = append(header, "custom_"+name)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for i := range records {
		line, err := encodeLine(records[i])
		if err != nil {
			return fmt.Errorf("encoding row %d: %w", records[i].RowNumber, err)
		}
		for _, name := range customs {
			line = append(line, records[i].Custom[name])
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("writing row %d: %w", records[i].RowNumber, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// encodeLine renders one record's tagged fields as cells.
func encodeLine(rec models.RateRecord) ([]string, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	enc := csvutil.NewEncoder(cw)
	enc.AutoHeader = false
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	line, err := csv.NewReader(&buf).Read()
	if err != nil {
		return nil, err
	}
	return line, nil
}

func customNames(records []models.RateRecord) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range r.Custom {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// WriteMsgpack writes the whole card, using the JSON field names as keys.
func WriteMsgpack(w io.Writer, card *models.RateCard) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(card); err != nil {
		return fmt.Errorf("encoding rate card: %w", err)
	}
	return nil
}

// ReadMsgpack decodes a card written by WriteMsgpack.
func ReadMsgpack(r io.Reader) (*models.RateCard, error) {
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag("json")
	var card models.RateCard
	if err := dec.Decode(&card); err != nil {
		return nil, fmt.Errorf("decoding rate card: %w", err)
	}
	return &card, nil
}
