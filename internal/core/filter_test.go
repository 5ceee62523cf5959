package core

import (
	"testing"
	"time"
)

func txn(id string, price float64, sold bool, cat, date string) Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return Transaction{ID: id, Title: "item " + id, Description: "desc " + id, Price: price, Sold: sold, Category: cat, DateOfSale: d}
}

func TestFilterMonthIgnoresYear(t *testing.T) {
	f, err := NewFilter("March", "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	in := []Transaction{
		txn("1", 10, true, "A", "2024-03-05"),
		txn("2", 10, true, "A", "2021-03-31"),
		txn("3", 10, true, "A", "2024-04-01"),
		txn("4", 10, true, "A", "2024-02-29"),
	}
	var got []string
	for _, tr := range in {
		if f.Matches(tr) {
			got = append(got, tr.ID)
		}
	}
	if len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("unexpected matches: %v", got)
	}
}

func TestFilterMonthUsesUTC(t *testing.T) {
	f, _ := NewFilter("December", "")
	// 00:30 on Jan 1st in +05:30 is still Dec 31st in UTC.
	d, _ := time.Parse(time.RFC3339, "2022-01-01T00:30:00+05:30")
	if !f.Matches(Transaction{ID: "x", DateOfSale: d}) {
		t.Fatalf("expected UTC month to be December")
	}
}

func TestFilterSearch(t *testing.T) {
	tr := Transaction{
		ID:          "1",
		Title:       "Mens Casual Slim Fit",
		Description: "The color could be slightly different",
		Price:       15.99,
		DateOfSale:  time.Date(2022, time.July, 1, 0, 0, 0, 0, time.UTC),
	}
	cases := []struct {
		search string
		match  bool
	}{
		{"", true},
		{"   ", true},
		{"casual", true},
		{"SLIM", true},
		{"color", true},
		{"15.9", true},
		{"99", true},
		{"jacket", false},
		{"16", false},
		{".*", false},
	}
	for _, tc := range cases {
		f, err := NewFilter("july", tc.search)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if got := f.Matches(tr); got != tc.match {
			t.Fatalf("search %q: expected %v, got %v", tc.search, tc.match, got)
		}
	}
}

func TestFilterSoldOnly(t *testing.T) {
	f, _ := NewFilter("3", "")
	sold := f.Sold()
	if f.SoldOnly {
		t.Fatalf("Sold must not modify the receiver")
	}
	unsold := txn("1", 10, false, "A", "2024-03-05")
	if !f.Matches(unsold) || sold.Matches(unsold) {
		t.Fatalf("sold-only filter mismatch")
	}
}

func TestNewFilterRejectsBadMonth(t *testing.T) {
	if _, err := NewFilter("", "x"); err != ErrMonthRequired {
		t.Fatalf("expected ErrMonthRequired, got %v", err)
	}
	if _, err := NewFilter("Smarch", ""); err != ErrInvalidMonth {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestPriceString(t *testing.T) {
	cases := map[float64]string{
		100:    "100",
		329.85: "329.85",
		0.5:    "0.5",
		1e7:    "10000000",
	}
	for in, want := range cases {
		if got := PriceString(in); got != want {
			t.Fatalf("PriceString(%v) = %q, want %q", in, got, want)
		}
	}
}
