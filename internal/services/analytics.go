package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"salesdash/internal/core"
	"salesdash/internal/txstore"
)

// DefaultStoreTimeout bounds every store round trip of one request.
const DefaultStoreTimeout = 7 * time.Second

// Seeder replaces the dataset. *seed.Loader implements it.
type Seeder interface {
	Load(ctx context.Context) (int, error)
}

// ListQuery holds the parameters of a transaction listing.
type ListQuery struct {
	Month   string
	Search  string
	Page    int
	PerPage int
}

// Listing is one page of transactions with its paging metadata.
type Listing struct {
	core.Page
	Data []core.Transaction `json:"data"`
}

// MonthStatistics is the statistics of one month, echoing the month parameter.
type MonthStatistics struct {
	Month string `json:"month"`
	core.Statistics
}

// BarChart is the price histogram of one month.
type BarChart struct {
	Month       string           `json:"month"`
	PriceRanges core.PriceRanges `json:"priceRanges"`
}

// PieChart is the category distribution of one month.
type PieChart struct {
	Month             string         `json:"month"`
	CategoryWiseCount map[string]int `json:"categoryWiseCount"`
}

// AnalyticsService answers the dashboard queries. Every call validates its
// month, reads from the store and aggregates from scratch.
type AnalyticsService struct {
	store          txstore.Store
	seeder         Seeder
	timeout        time.Duration
	defaultPerPage int
	maxPerPage     int // 0 means unlimited
}

// AnalyticsOption customises an AnalyticsService.
type AnalyticsOption func(*AnalyticsService)

// WithStoreTimeout sets the per-request store deadline.
func WithStoreTimeout(d time.Duration) AnalyticsOption {
	return func(s *AnalyticsService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithDefaultPerPage sets the page size used when a listing asks for none.
func WithDefaultPerPage(n int) AnalyticsOption {
	return func(s *AnalyticsService) {
		if n > 0 {
			s.defaultPerPage = n
		}
	}
}

// WithMaxPerPage bounds the page size a listing may request. Zero leaves it
// unbounded.
func WithMaxPerPage(n int) AnalyticsOption {
	return func(s *AnalyticsService) {
		if n >= 0 {
			s.maxPerPage = n
		}
	}
}

func NewAnalyticsService(store txstore.Store, seeder Seeder, opts ...AnalyticsOption) *AnalyticsService {
	s := &AnalyticsService{
		store:          store,
		seeder:         seeder,
		timeout:        DefaultStoreTimeout,
		defaultPerPage: core.DefaultPerPage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AnalyticsService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Initialize replaces the dataset with the seed feed and returns the number
// of records loaded.
func (s *AnalyticsService) Initialize(ctx context.Context) (int, error) {
	return s.seeder.Load(ctx)
}

// ListTransactions returns one page of the month's transactions matching the
// search. Count and page are read concurrently; either failure fails the
// call.
func (s *AnalyticsService) ListTransactions(ctx context.Context, q ListQuery) (Listing, error) {
	f, err := core.NewFilter(q.Month, q.Search)
	if err != nil {
		return Listing{}, err
	}

	perPage := q.PerPage
	if perPage < 1 {
		perPage = s.defaultPerPage
	}
	if s.maxPerPage > 0 && perPage > s.maxPerPage {
		perPage = s.maxPerPage
	}
	// total is not known yet; the offset does not depend on it
	page := core.Paginate(0, q.Page, perPage)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		total int
		data  []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.store.Count(gctx, f)
		if err != nil {
			return core.Upstream("count transactions", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		ts, err := s.store.FindPage(gctx, f, page.Offset(), page.PerPage)
		if err != nil {
			return core.Upstream("find transactions", err)
		}
		data = ts
		return nil
	})
	if err := g.Wait(); err != nil {
		return Listing{}, err
	}

	if data == nil {
		data = []core.Transaction{}
	}
	return Listing{
		Page: core.Paginate(total, page.Page, page.PerPage),
		Data: data,
	}, nil
}

func (s *AnalyticsService) find(ctx context.Context, op string, f core.Filter) ([]core.Transaction, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ts, err := s.store.Find(ctx, f)
	if err != nil {
		return nil, core.Upstream(op, err)
	}
	return ts, nil
}

// Statistics totals the month's sold amount and counts sold and unsold
// records.
func (s *AnalyticsService) Statistics(ctx context.Context, month string) (MonthStatistics, error) {
	f, err := core.NewFilter(month, "")
	if err != nil {
		return MonthStatistics{}, err
	}
	ts, err := s.find(ctx, "find month transactions", f)
	if err != nil {
		return MonthStatistics{}, err
	}
	return MonthStatistics{Month: month, Statistics: core.Summarize(ts)}, nil
}

// BarChart buckets the month's sold records by price.
func (s *AnalyticsService) BarChart(ctx context.Context, month string) (BarChart, error) {
	f, err := core.NewFilter(month, "")
	if err != nil {
		return BarChart{}, err
	}
	ts, err := s.find(ctx, "find sold transactions", f.Sold())
	if err != nil {
		return BarChart{}, err
	}
	return BarChart{Month: month, PriceRanges: core.PriceHistogram(ts)}, nil
}

// PieChart counts the month's sold records per category.
func (s *AnalyticsService) PieChart(ctx context.Context, month string) (PieChart, error) {
	f, err := core.NewFilter(month, "")
	if err != nil {
		return PieChart{}, err
	}
	ts, err := s.find(ctx, "find sold transactions", f.Sold())
	if err != nil {
		return PieChart{}, err
	}
	return PieChart{Month: month, CategoryWiseCount: core.CategoryDistribution(ts)}, nil
}

// Combined computes statistics, bar chart and pie chart from a single read of
// the month's records.
func (s *AnalyticsService) Combined(ctx context.Context, month string) (core.Combined, error) {
	f, err := core.NewFilter(month, "")
	if err != nil {
		return core.Combined{}, err
	}
	ts, err := s.find(ctx, "find month transactions", f)
	if err != nil {
		return core.Combined{}, err
	}
	return core.Combine(month, ts), nil
}

// Ready reports whether the store answers.
func (s *AnalyticsService) Ready(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.store.Ping(ctx)
}
