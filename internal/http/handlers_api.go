package http

import (
	"net/http"

	applog "salesdash/internal/log"
)

const internalErrorMessage = "Internal server error"

type messageResponse struct {
	Message string `json:"message"`
}

// handleInitialize replaces the dataset with the seed feed
func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	n, err := s.analytics.Initialize(r.Context())
	if err != nil {
		writeServiceError(w, r, err, applog.OpSeed, "Failed to initialize database")
		return
	}

	applog.NewStructuredLogger(applog.FromContext(r.Context()).WithComponent(applog.ComponentSeed)).
		LogSeeded(r.Context(), "http", n)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Database initialized with seed data!"})
}

// handleTransactions returns one page of the month's transactions
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r.URL.Query())
	res, err := s.analytics.ListTransactions(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err, applog.OpList, internalErrorMessage)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	res, err := s.analytics.Statistics(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		writeServiceError(w, r, err, applog.OpStatistics, internalErrorMessage)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleBarChart(w http.ResponseWriter, r *http.Request) {
	res, err := s.analytics.BarChart(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		writeServiceError(w, r, err, applog.OpBarChart, internalErrorMessage)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePieChart(w http.ResponseWriter, r *http.Request) {
	res, err := s.analytics.PieChart(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		writeServiceError(w, r, err, applog.OpPieChart, internalErrorMessage)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCombined(w http.ResponseWriter, r *http.Request) {
	res, err := s.analytics.Combined(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		writeServiceError(w, r, err, applog.OpCombined, internalErrorMessage)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
