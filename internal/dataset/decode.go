// Package dataset ingests uploaded CSV files.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

var (
	// ErrUndecodable is returned when the upload is neither UTF-8 nor one of the legacy fallbacks.
	ErrUndecodable = errors.New("file is not valid UTF-8, Big5 or GBK text")
	// ErrEmpty is returned for an upload without a header row.
	ErrEmpty = errors.New("file is empty")
)

// ParseError wraps a CSV syntax error.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid csv: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Fallbacks are the legacy encodings tried when the upload is not valid UTF-8.
// Every fallback is attempted and the most plausible decoding wins; ties go to the earlier entry.
var Fallbacks = []struct {
	Name     string
	Encoding encoding.Encoding
}{
	{"big5", traditionalchinese.Big5},
	{"gbk", simplifiedchinese.GBK},
}

// Decode reads a whole CSV upload and parses it into a Table.
func Decode(r io.Reader) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	text, enc, err := toUTF8(raw)
	if err != nil {
		return nil, err
	}
	t, err := parse(text)
	if err != nil {
		return nil, err
	}
	t.Encoding = enc
	return t, nil
}

func toUTF8(raw []byte) ([]byte, string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return raw, "utf-8", nil
	}
	var (
		best      []byte
		bestName  string
		bestScore int
	)
	for _, fb := range Fallbacks {
		out, err := fb.Encoding.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}
		// x/text substitutes invalid sequences instead of failing.
		if bytes.ContainsRune(out, utf8.RuneError) {
			continue
		}
		if score := stray(out); best == nil || score < bestScore {
			best, bestName, bestScore = out, fb.Name, score
		}
	}
	if best == nil {
		return nil, "", ErrUndecodable
	}
	return best, bestName, nil
}

// stray counts runes that are unlikely in Chinese text: anything outside
// ASCII, Han ideographs, CJK punctuation and fullwidth forms.
// A wrong legacy decoding lands in kana, symbol and private-use areas.
func stray(text []byte) int {
	n := 0
	for _, r := range string(text) {
		switch {
		case r < utf8.RuneSelf:
		case unicode.Is(unicode.Han, r):
		case r >= 0x3000 && r <= 0x303F:
		case r >= 0xFF00 && r <= 0xFFEF:
		default:
			n++
		}
	}
	return n
}

func parse(text []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(text))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, &ParseError{Err: err}
	}
	t := &Table{Columns: header, Rows: [][]string{}}
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &ParseError{Err: err}
		}
		if len(rec) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, &ParseError{Err: fmt.Errorf("line %d: expected %d fields, saw %d", line, len(header), len(rec))}
		}
		if len(rec) < len(header) {
			padded := make([]string, len(header))
			copy(padded, rec)
			rec = padded
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}
