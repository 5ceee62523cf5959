package seed

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"salesdash/internal/core"
)

// feedRecord is one element of the product feed. The feed carries numeric
// ids; exported dumps of this service carry "_id" strings. Both are
// accepted.
type feedRecord struct {
	ID          any     `json:"id"`
	MongoID     any     `json:"_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Sold        bool    `json:"sold"`
	DateOfSale  string  `json:"dateOfSale"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	default:
		return ""
	}
}

// Decode parses a feed document into transactions. Records without an id,
// or whose id repeats an earlier one, get a fresh UUID; a blank category
// becomes core.UnknownCategory.
func Decode(data []byte) ([]core.Transaction, error) {
	var records []feedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	seen := make(map[string]struct{}, len(records))
	out := make([]core.Transaction, 0, len(records))
	for i, rec := range records {
		date, err := parseDate(rec.DateOfSale)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if rec.Price < 0 {
			return nil, fmt.Errorf("record %d: %w", i, core.ErrNegativePrice)
		}

		id := idString(rec.MongoID)
		if id == "" {
			id = idString(rec.ID)
		}
		if _, dup := seen[id]; dup || id == "" {
			id = uuid.NewString()
		}
		seen[id] = struct{}{}

		category := strings.TrimSpace(rec.Category)
		if category == "" {
			category = core.UnknownCategory
		}

		out = append(out, core.Transaction{
			ID:          id,
			Title:       rec.Title,
			Description: rec.Description,
			Price:       rec.Price,
			Category:    category,
			Sold:        rec.Sold,
			DateOfSale:  date,
			Image:       rec.Image,
		})
	}
	return out, nil
}
