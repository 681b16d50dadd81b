// Package rfm scores customers on recency, frequency and monetary value.
package rfm

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BerylCAtieno/rfm-workbench/internal/dataset"
	"github.com/BerylCAtieno/rfm-workbench/internal/models"
)

// Required input columns.
const (
	ColCustomer = "customer_id"
	ColDate     = "date"
	ColValue    = "value [USD]"
)

// Buckets is the number of quantile buckets per metric.
const Buckets = 5

// DefaultReferenceDate is the instant recency is measured against.
var DefaultReferenceDate = time.Date(2018, time.December, 1, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
}

// MissingColumnsError reports required columns absent from the dataset.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("dataset is missing required columns: %s", strings.Join(e.Missing, ", "))
}

// CellError reports a value that could not be interpreted. Row is 1-based over data rows.
type CellError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("row %d: column %q: cannot parse %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

type customer struct {
	id        string
	latest    time.Time
	frequency int
	monetary  float64
}

// Compute builds one record per distinct customer in t, sorted by customer id.
// It returns no records at all when any row or column is unusable.
// Rows with a blank customer id are validated but otherwise skipped.
func Compute(t *dataset.Table, ref time.Time) ([]models.CustomerRFM, error) {
	if missing := t.Missing(ColCustomer, ColDate, ColValue); len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}
	idIdx, dateIdx, valIdx := t.Index(ColCustomer), t.Index(ColDate), t.Index(ColValue)

	byID := map[string]*customer{}
	var order []*customer
	for i, row := range t.Rows {
		id := strings.TrimSpace(cell(row, idIdx))
		d, err := ParseDate(cell(row, dateIdx))
		if err != nil {
			return nil, &CellError{Row: i + 1, Column: ColDate, Value: cell(row, dateIdx), Err: err}
		}
		v, err := ParseValue(cell(row, valIdx))
		if err != nil {
			return nil, &CellError{Row: i + 1, Column: ColValue, Value: cell(row, valIdx), Err: err}
		}
		if id == "" {
			continue
		}
		c, ok := byID[id]
		if !ok {
			c = &customer{id: id, latest: d}
			byID[id] = c
			order = append(order, c)
		}
		if d.After(c.latest) {
			c.latest = d
		}
		c.frequency++
		c.monetary += v
	}

	n := len(order)
	recency := make([]float64, n)
	frequency := make([]float64, n)
	monetary := make([]float64, n)
	for i, c := range order {
		recency[i] = float64(daysBetween(c.latest, ref))
		frequency[i] = float64(c.frequency)
		monetary[i] = c.monetary
	}
	rBucket := Bucketize(recency)
	fBucket := Bucketize(frequency)
	mBucket := Bucketize(monetary)

	out := make([]models.CustomerRFM, n)
	for i, c := range order {
		r := Buckets + 1 - rBucket[i]
		f := fBucket[i]
		m := mBucket[i]
		out[i] = models.CustomerRFM{
			CustomerID: c.id,
			Recency:    int(recency[i]),
			Frequency:  c.frequency,
			Monetary:   c.monetary,
			RScore:     r,
			FScore:     f,
			MScore:     m,
			Segment:    fmt.Sprintf("%d%d%d", r, f, m),
			Score:      r + f + m,
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return lessID(out[i].CustomerID, out[j].CustomerID) })
	return out, nil
}

// Bucketize assigns each value a bucket in 1..Buckets by ascending rank.
// Equal values are ranked in input order, so bucket sizes always differ by at most one.
func Bucketize(values []float64) []int {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })
	out := make([]int, n)
	for pos, i := range idx {
		out[i] = pos*Buckets/n + 1
	}
	return out
}

// Preview returns the first n records.
func Preview(records []models.CustomerRFM, n int) []models.CustomerRFM {
	if n < len(records) {
		return records[:n]
	}
	return records
}

// ParseDate accepts the date layouts commonly found in transaction exports.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date")
}

// ParseValue parses an amount, tolerating a leading "$" and thousands separators.
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return v, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func daysBetween(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

// lessID orders numeric ids numerically and everything else lexically, numbers first.
func lessID(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}
