package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/usecase"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/errutil"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/safe"
	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
)

const (
	defaultReportLimit = 20
	maxReportLimit     = 100
	defaultSearchLimit = 20
	maxSearchLimit     = 200
)

type analyzeTextRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

type catalogResponse struct {
	Categories        []model.CategorySummary `json:"categories"`
	Entries           int                     `json:"entries"`
	Destinations      []string                `json:"destinations"`
	ControlReasons    []string                `json:"control_reasons"`
	RestrictedParties int                     `json:"restricted_parties"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) analyzeFieldsHandler(w http.ResponseWriter, r *http.Request) {
	var fields model.ExtractedFields
	if err := s.decode(w, r, &fields); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	report, err := s.analyzeUC.Analyze(r.Context(), nil, fields)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

func (s *Server) analyzeTextHandler(w http.ResponseWriter, r *http.Request) {
	var req analyzeTextRequest
	if err := s.decode(w, r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	report, err := s.analyzeUC.AnalyzeDocument(r.Context(), nil, req.Source, req.Text)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

func (s *Server) getReportHandler(w http.ResponseWriter, r *http.Request) {
	id := model.ReportID(chi.URLParam(r, "id"))

	report, err := s.analyzeUC.Report(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

func (s *Server) listReportsHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, defaultReportLimit, maxReportLimit)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	reports, err := s.analyzeUC.Reports(r.Context(), limit)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"reports": reports})
}

func (s *Server) catalogHandler(w http.ResponseWriter, r *http.Request) {
	resp := catalogResponse{
		Categories:        s.refs.Classification.Summary(),
		Entries:           s.refs.Classification.Len(),
		Destinations:      s.refs.Matrix.Destinations(),
		ControlReasons:    make([]string, len(s.refs.Matrix.Columns)),
		RestrictedParties: s.refs.Registry.Len(),
	}
	for i, c := range s.refs.Matrix.Columns {
		resp.ControlReasons[i] = c.String()
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) catalogSearchHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, defaultSearchLimit, maxSearchLimit)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	query := r.URL.Query().Get("q")
	entries, err := s.catalogUC.Search(query, limit)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"query": query, "entries": entries})
}

func (s *Server) catalogDetailHandler(w http.ResponseWriter, r *http.Request) {
	detail, err := s.catalogUC.Detail(chi.URLParam(r, "code"))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, detail)
}

// queryLimit reads the limit query parameter, capped at upper
func queryLimit(r *http.Request, fallback, upper int) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, goerr.New("limit must be a positive integer", goerr.V("limit", v))
	}
	return min(n, upper), nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	defer safe.Close(r.Context(), body)

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return goerr.Wrap(err, "failed to decode request body")
	}
	return nil
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}
