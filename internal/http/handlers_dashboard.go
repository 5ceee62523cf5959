package http

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"salesdash/internal/core"
	applog "salesdash/internal/log"
	"salesdash/internal/services"
)

var printer = message.NewPrinter(language.English)

var templateFuncs = template.FuncMap{
	"amount": formatAmount,
	"count":  func(n int) string { return printer.Sprintf("%d", n) },
}

// formatAmount renders a price with thousands separators and two decimals.
func formatAmount(v float64) string {
	return "₹" + printer.Sprintf("%.2f", v)
}

type barView struct {
	Label   string
	Count   int
	Percent int
}

type sliceView struct {
	Category string
	Count    int
	Percent  int
}

type dashboardView struct {
	Month      string
	Months     []string
	Search     string
	Error      string
	Stats      core.Statistics
	Bars       []barView
	Slices     []sliceView
	Rows       []core.Transaction
	Page       core.Page
	PrevURL    string
	NextURL    string
	RenderedAt time.Time
}

func monthNames() []string {
	names := make([]string, 12)
	for i := range names {
		names[i] = time.Month(i + 1).String()
	}
	return names
}

// percentOf scales n against peak, keeping non-zero values visible.
func percentOf(n, peak int) int {
	if peak <= 0 || n <= 0 {
		return 0
	}
	p := (n*100 + peak/2) / peak
	if p < 2 {
		p = 2
	}
	return p
}

func barViews(ranges core.PriceRanges) []barView {
	labels := core.PriceRangeLabels()
	peak := 0
	for _, n := range ranges {
		if n > peak {
			peak = n
		}
	}
	out := make([]barView, len(labels))
	for i, label := range labels {
		out[i] = barView{Label: label, Count: ranges[i], Percent: percentOf(ranges[i], peak)}
	}
	return out
}

// sliceViews orders categories by count, then name.
func sliceViews(counts map[string]int) []sliceView {
	total := 0
	out := make([]sliceView, 0, len(counts))
	for category, n := range counts {
		total += n
		out = append(out, sliceView{Category: category, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	for i := range out {
		out[i].Percent = percentOf(out[i].Count, total)
	}
	return out
}

// loadDashboard reads the month summary and the table page concurrently.
func (s *Server) loadDashboard(ctx context.Context, q services.ListQuery) (core.Combined, services.Listing, error) {
	var (
		combined core.Combined
		listing  services.Listing
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		combined, err = s.analytics.Combined(gctx, q.Month)
		return err
	})
	g.Go(func() error {
		var err error
		listing, err = s.analytics.ListTransactions(gctx, q)
		return err
	})
	err := g.Wait()
	return combined, listing, err
}

// handleDashboard renders the statistics, charts and the searchable table
// for one month
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentTemplate)

	if s.templates == nil {
		logger.ErrorContext(ctx, "Templates not loaded", applog.FieldPath, r.URL.Path,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	q := dashboardQuery(r.URL.Query())
	view := dashboardView{
		Month:      q.Month,
		Months:     monthNames(),
		Search:     q.Search,
		RenderedAt: time.Now(),
	}

	status := http.StatusOK
	combined, listing, err := s.loadDashboard(ctx, q)
	switch {
	case core.IsClientInput(err):
		status = http.StatusBadRequest
		view.Error = clientMessage(err)
	case err != nil:
		status = http.StatusInternalServerError
		view.Error = "Failed to load dashboard data"
		applog.NewStructuredLogger(logger).LogError(ctx, "Dashboard data load failed", err, applog.OpRender,
			applog.NewFields().WithQuery(q.Month, q.Search, q.Page, q.PerPage))
	default:
		view.Stats = combined.Statistics
		view.Bars = barViews(combined.BarChart)
		view.Slices = sliceViews(combined.PieChart)
		view.Rows = listing.Data
		view.Page = listing.Page
		if listing.Page.Page > 1 {
			view.PrevURL = pageURL(r.URL.Path, q, listing.Page.Page-1)
		}
		if listing.Page.Page < listing.TotalPages {
			view.NextURL = pageURL(r.URL.Path, q, listing.Page.Page+1)
		}
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "dashboard.html", view); err != nil {
		logger.ErrorContext(ctx, "Dashboard template execution failed", applog.FieldError, err,
			"template", "dashboard.html")
		http.Error(w, "template rendering failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
