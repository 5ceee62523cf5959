package core

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// DefaultPerPage is the page size used when a listing asks for none.
const DefaultPerPage = 10

// Statistics summarises sold and unsold records of a month.
type Statistics struct {
	TotalSaleAmount  float64 `json:"totalSaleAmount"`
	TotalSoldItems   int     `json:"totalSoldItems"`
	TotalUnsoldItems int     `json:"totalUnsoldItems"`
}

// priceBucket is one histogram bucket: prices up to and including Upper.
type priceBucket struct {
	Upper float64
	Label string
}

// priceBuckets partitions [0, +Inf). A price on a boundary belongs to the
// lower bucket.
var priceBuckets = []priceBucket{
	{100, "0-100"},
	{200, "101-200"},
	{300, "201-300"},
	{400, "301-400"},
	{500, "401-500"},
	{600, "501-600"},
	{700, "601-700"},
	{800, "701-800"},
	{900, "801-900"},
	{math.Inf(1), "901-above"},
}

// PriceRangeLabels returns the histogram labels in bucket order.
func PriceRangeLabels() []string {
	out := make([]string, len(priceBuckets))
	for i, b := range priceBuckets {
		out[i] = b.Label
	}
	return out
}

// BucketFor returns the index of the bucket holding price.
func BucketFor(price float64) int {
	for i, b := range priceBuckets {
		if price <= b.Upper {
			return i
		}
	}
	// NaN compares false against every bound
	return len(priceBuckets) - 1
}

// PriceRanges holds one count per histogram bucket, in bucket order.
type PriceRanges [10]int

// Get returns the count for a bucket label.
func (p PriceRanges) Get(label string) (int, bool) {
	for i, b := range priceBuckets {
		if b.Label == label {
			return p[i], true
		}
	}
	return 0, false
}

// Total returns the sum of all bucket counts.
func (p PriceRanges) Total() int {
	n := 0
	for _, c := range p {
		n += c
	}
	return n
}

// MarshalJSON encodes the histogram as an object keyed by label, keeping
// bucket order.
func (p PriceRanges) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range priceBuckets {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(b.Label))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(p[i]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts the object form produced by MarshalJSON.
func (p *PriceRanges) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*p = PriceRanges{}
	for i, b := range priceBuckets {
		p[i] = m[b.Label]
	}
	return nil
}

// Combined is the dashboard view of one month.
type Combined struct {
	Month      string         `json:"month"`
	Statistics Statistics     `json:"statistics"`
	BarChart   PriceRanges    `json:"barChart"`
	PieChart   map[string]int `json:"pieChart"`
}

// Page describes one slice of a listing.
type Page struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Offset is the index of the first record of the page.
func (p Page) Offset() int {
	if p.PerPage > 0 && p.Page-1 > math.MaxInt/p.PerPage {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PerPage
}

// Summarize totals sale amount over sold records and counts sold and unsold
// records.
func Summarize(ts []Transaction) Statistics {
	var s Statistics
	for _, t := range ts {
		if t.Sold {
			s.TotalSaleAmount += t.Price
			s.TotalSoldItems++
		} else {
			s.TotalUnsoldItems++
		}
	}
	return s
}

// PriceHistogram counts sold records per price bucket.
func PriceHistogram(ts []Transaction) PriceRanges {
	var p PriceRanges
	for _, t := range ts {
		if t.Sold {
			p[BucketFor(t.Price)]++
		}
	}
	return p
}

// CategoryDistribution counts sold records per category label.
func CategoryDistribution(ts []Transaction) map[string]int {
	out := make(map[string]int)
	for _, t := range ts {
		if t.Sold {
			out[t.CategoryLabel()]++
		}
	}
	return out
}

// Combine computes statistics, histogram and distribution over one set.
func Combine(month string, ts []Transaction) Combined {
	return Combined{
		Month:      month,
		Statistics: Summarize(ts),
		BarChart:   PriceHistogram(ts),
		PieChart:   CategoryDistribution(ts),
	}
}

// Paginate normalises page and perPage and derives the page count. Values
// below 1 fall back to the first page and DefaultPerPage.
func Paginate(total, page, perPage int) Page {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if page > math.MaxInt32 {
		page = math.MaxInt32
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total-1)/perPage + 1
	}
	return Page{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}
