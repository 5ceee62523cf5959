package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"salesdash/internal/core"
	"salesdash/internal/txstore/memory"
)

func sale(id string, price float64, sold bool, category, date string) core.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{
		ID:          id,
		Title:       "Product " + id,
		Description: "Description of product " + id,
		Price:       price,
		Category:    category,
		Sold:        sold,
		DateOfSale:  d,
	}
}

// failingStore fails every call with err and counts how often it was reached.
type failingStore struct {
	err   error
	calls atomic.Int32
}

func (s *failingStore) Find(context.Context, core.Filter) ([]core.Transaction, error) {
	s.calls.Add(1)
	return nil, s.err
}

func (s *failingStore) Count(context.Context, core.Filter) (int, error) {
	s.calls.Add(1)
	return 0, s.err
}

func (s *failingStore) FindPage(context.Context, core.Filter, int, int) ([]core.Transaction, error) {
	s.calls.Add(1)
	return nil, s.err
}

func (s *failingStore) ReplaceAll(context.Context, []core.Transaction) error {
	s.calls.Add(1)
	return s.err
}

func (s *failingStore) Ping(context.Context) error {
	s.calls.Add(1)
	return s.err
}

type stubSeeder struct {
	n   int
	err error
}

func (s stubSeeder) Load(context.Context) (int, error) { return s.n, s.err }

func exampleService() *AnalyticsService {
	store := memory.New(
		sale("1", 100, true, "A", "2024-03-05"),
		sale("2", 150, false, "B", "2023-03-10"),
	)
	return NewAnalyticsService(store, stubSeeder{})
}

func TestStatisticsExample(t *testing.T) {
	got, err := exampleService().Statistics(context.Background(), "March")
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	want := MonthStatistics{
		Month:      "March",
		Statistics: core.Statistics{TotalSaleAmount: 100, TotalSoldItems: 1, TotalUnsoldItems: 1},
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestBarChartExample(t *testing.T) {
	got, err := exampleService().BarChart(context.Background(), "march")
	if err != nil {
		t.Fatalf("BarChart: %v", err)
	}
	if got.Month != "march" {
		t.Errorf("month = %q, want the caller's value", got.Month)
	}
	if n, _ := got.PriceRanges.Get("0-100"); n != 1 {
		t.Errorf("0-100 = %d, want 1", n)
	}
	if n, _ := got.PriceRanges.Get("101-200"); n != 0 {
		t.Errorf("101-200 = %d, want 0 (unsold record)", n)
	}
	if got.PriceRanges.Total() != 1 {
		t.Errorf("total = %d, want 1", got.PriceRanges.Total())
	}
}

func TestPieChartExample(t *testing.T) {
	got, err := exampleService().PieChart(context.Background(), "Mar")
	if err != nil {
		t.Fatalf("PieChart: %v", err)
	}
	if len(got.CategoryWiseCount) != 1 || got.CategoryWiseCount["A"] != 1 {
		t.Errorf("categoryWiseCount = %v, want map[A:1]", got.CategoryWiseCount)
	}
}

func TestCombinedMatchesIndividualEndpoints(t *testing.T) {
	svc := NewAnalyticsService(memory.New(
		sale("1", 100, true, "A", "2024-03-05"),
		sale("2", 150, false, "B", "2023-03-10"),
		sale("3", 950, true, "", "2022-03-01"),
		sale("4", 250, true, "A", "2022-04-01"),
	), stubSeeder{})
	ctx := context.Background()

	combined, err := svc.Combined(ctx, "March")
	if err != nil {
		t.Fatalf("Combined: %v", err)
	}
	stats, _ := svc.Statistics(ctx, "March")
	bar, _ := svc.BarChart(ctx, "March")
	pie, _ := svc.PieChart(ctx, "March")

	if combined.Statistics != stats.Statistics {
		t.Errorf("statistics = %+v, want %+v", combined.Statistics, stats.Statistics)
	}
	if combined.BarChart != bar.PriceRanges {
		t.Errorf("bar chart = %v, want %v", combined.BarChart, bar.PriceRanges)
	}
	if fmt.Sprint(combined.PieChart) != fmt.Sprint(pie.CategoryWiseCount) {
		t.Errorf("pie chart = %v, want %v", combined.PieChart, pie.CategoryWiseCount)
	}
	if combined.PieChart[core.UnknownCategory] != 1 {
		t.Errorf("blank category should count as %q", core.UnknownCategory)
	}

	sum := 0
	for _, n := range combined.PieChart {
		sum += n
	}
	if sum != combined.Statistics.TotalSoldItems {
		t.Errorf("category sum %d != sold items %d", sum, combined.Statistics.TotalSoldItems)
	}
}

func TestListTransactions(t *testing.T) {
	var ts []core.Transaction
	for i := 0; i < 25; i++ {
		ts = append(ts, sale(fmt.Sprint(i), float64(10*i), i%2 == 0, "A", "2022-03-15"))
	}
	ts = append(ts, sale("april", 1, true, "A", "2022-04-15"))
	svc := NewAnalyticsService(memory.New(ts...), stubSeeder{})
	ctx := context.Background()

	tests := []struct {
		name        string
		query       ListQuery
		wantPage    int
		wantPer     int
		wantLen     int
		wantTotal   int
		wantPages   int
		wantFirstID string
	}{
		{"defaults", ListQuery{Month: "March"}, 1, 10, 10, 25, 3, "0"},
		{"last partial page", ListQuery{Month: "March", Page: 3, PerPage: 10}, 3, 10, 5, 25, 3, "20"},
		{"beyond range", ListQuery{Month: "March", Page: 9, PerPage: 10}, 9, 10, 0, 25, 3, ""},
		{"negative page", ListQuery{Month: "March", Page: -2, PerPage: 5}, 1, 5, 5, 25, 5, "0"},
		{"search by title", ListQuery{Month: "March", Search: "product 12"}, 1, 10, 1, 1, 1, "12"},
		{"search by price", ListQuery{Month: "March", Search: "240"}, 1, 10, 1, 1, 1, "24"},
		{"no match", ListQuery{Month: "March", Search: "zzz"}, 1, 10, 0, 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ListTransactions(ctx, tt.query)
			if err != nil {
				t.Fatalf("ListTransactions: %v", err)
			}
			if got.Page.Page != tt.wantPage || got.PerPage != tt.wantPer {
				t.Errorf("page/perPage = %d/%d, want %d/%d", got.Page.Page, got.PerPage, tt.wantPage, tt.wantPer)
			}
			if got.Total != tt.wantTotal || got.TotalPages != tt.wantPages {
				t.Errorf("total/pages = %d/%d, want %d/%d", got.Total, got.TotalPages, tt.wantTotal, tt.wantPages)
			}
			if got.Data == nil {
				t.Fatal("data must be an empty slice, not nil")
			}
			if len(got.Data) != tt.wantLen {
				t.Fatalf("len(data) = %d, want %d", len(got.Data), tt.wantLen)
			}
			if tt.wantFirstID != "" && got.Data[0].ID != tt.wantFirstID {
				t.Errorf("first id = %q, want %q", got.Data[0].ID, tt.wantFirstID)
			}
		})
	}
}

func TestListTransactionsDefaultPerPageOption(t *testing.T) {
	svc := NewAnalyticsService(memory.New(), stubSeeder{}, WithDefaultPerPage(25))
	got, err := svc.ListTransactions(context.Background(), ListQuery{Month: "1"})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if got.PerPage != 25 {
		t.Errorf("perPage = %d, want 25", got.PerPage)
	}
}

func TestListTransactionsHonoursLargePerPage(t *testing.T) {
	ts := make([]core.Transaction, 150)
	for i := range ts {
		ts[i] = sale(fmt.Sprint(i+1), float64(i), i%2 == 0, "A", "2022-03-15")
	}
	svc := NewAnalyticsService(memory.New(ts...), stubSeeder{})

	got, err := svc.ListTransactions(context.Background(), ListQuery{Month: "March", Page: 1, PerPage: 150})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if got.PerPage != 150 || got.Total != 150 || got.TotalPages != 1 {
		t.Errorf("page = %+v, want perPage 150, total 150, totalPages 1", got.Page)
	}
	if len(got.Data) != 150 {
		t.Errorf("len(data) = %d, want 150", len(got.Data))
	}
}

func TestListTransactionsMaxPerPageOption(t *testing.T) {
	ts := make([]core.Transaction, 30)
	for i := range ts {
		ts[i] = sale(fmt.Sprint(i+1), float64(i), true, "A", "2022-03-15")
	}
	svc := NewAnalyticsService(memory.New(ts...), stubSeeder{}, WithMaxPerPage(20))

	got, err := svc.ListTransactions(context.Background(), ListQuery{Month: "March", PerPage: 50})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if got.PerPage != 20 || got.TotalPages != 2 || len(got.Data) != 20 {
		t.Errorf("page = %+v len(data) = %d, want perPage 20, totalPages 2, 20 rows", got.Page, len(got.Data))
	}
}

func TestMonthValidatedBeforeStoreAccess(t *testing.T) {
	store := &failingStore{err: errors.New("unreachable")}
	svc := NewAnalyticsService(store, stubSeeder{})
	ctx := context.Background()

	calls := map[string]func(month string) error{
		"transactions": func(m string) error { _, err := svc.ListTransactions(ctx, ListQuery{Month: m}); return err },
		"statistics":   func(m string) error { _, err := svc.Statistics(ctx, m); return err },
		"bar-chart":    func(m string) error { _, err := svc.BarChart(ctx, m); return err },
		"pie-chart":    func(m string) error { _, err := svc.PieChart(ctx, m); return err },
		"combined":     func(m string) error { _, err := svc.Combined(ctx, m); return err },
	}
	for name, call := range calls {
		for _, month := range []string{"", "  ", "Smarch", "13"} {
			err := call(month)
			if !core.IsClientInput(err) {
				t.Errorf("%s(%q): err = %v, want client input error", name, month, err)
			}
		}
	}
	if n := store.calls.Load(); n != 0 {
		t.Errorf("store reached %d times for invalid months", n)
	}
}

func TestStoreFailuresAreUpstream(t *testing.T) {
	cause := errors.New("connection refused")
	svc := NewAnalyticsService(&failingStore{err: cause}, stubSeeder{})
	ctx := context.Background()

	checks := map[string]error{}
	_, checks["transactions"] = svc.ListTransactions(ctx, ListQuery{Month: "May"})
	_, checks["statistics"] = svc.Statistics(ctx, "May")
	_, checks["bar-chart"] = svc.BarChart(ctx, "May")
	_, checks["pie-chart"] = svc.PieChart(ctx, "May")
	_, checks["combined"] = svc.Combined(ctx, "May")

	for name, err := range checks {
		if !errors.Is(err, core.ErrUpstream) {
			t.Errorf("%s: err = %v, want ErrUpstream", name, err)
		}
		if !errors.Is(err, cause) {
			t.Errorf("%s: cause lost from %v", name, err)
		}
		if core.IsClientInput(err) {
			t.Errorf("%s: store failure classified as client input", name)
		}
	}
}

func TestInitializeDelegatesToSeeder(t *testing.T) {
	svc := NewAnalyticsService(memory.New(), stubSeeder{n: 60})
	n, err := svc.Initialize(context.Background())
	if err != nil || n != 60 {
		t.Errorf("Initialize = %d, %v; want 60, nil", n, err)
	}

	fail := core.Upstream("fetch seed feed", errors.New("timeout"))
	svc = NewAnalyticsService(memory.New(), stubSeeder{err: fail})
	if _, err := svc.Initialize(context.Background()); !errors.Is(err, core.ErrUpstream) {
		t.Errorf("err = %v, want ErrUpstream", err)
	}
}

func TestReady(t *testing.T) {
	if err := exampleService().Ready(context.Background()); err != nil {
		t.Errorf("Ready: %v", err)
	}
	svc := NewAnalyticsService(&failingStore{err: errors.New("down")}, stubSeeder{})
	if err := svc.Ready(context.Background()); err == nil {
		t.Error("Ready should fail when the store does")
	}
}
