package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"ValueZone/internal/chart"
	"ValueZone/internal/collector"
	"ValueZone/internal/config"
	"ValueZone/internal/model"
	"ValueZone/internal/notifier"
	"ValueZone/internal/recorder"
)

//go:embed templates/*.html
var templatesFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// errorStatus maps pipeline errors to an HTTP status code.
func errorStatus(err error) int {
	var (
		noData       *model.NoDataError
		fetch        *model.FetchError
		insufficient *model.InsufficientDataError
		invalid      *model.InvalidBaselineError
	)
	switch {
	case errors.Is(err, collector.ErrEmptySymbol):
		return http.StatusBadRequest
	case errors.As(err, &noData):
		return http.StatusNotFound
	case errors.As(err, &insufficient), errors.As(err, &invalid):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// zoneResponse flattens the headline numbers of an analysis for API clients.
type zoneResponse struct {
	*model.Analysis
	Price     float64    `json:"price"`
	Zone      model.Zone `json:"zone"`
	ZoneLabel string     `json:"zone_label"`
}

func (s *Server) handleZone(w http.ResponseWriter, r *http.Request) {
	a, err := s.analyze(r, mux.Vars(r)["symbol"])
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, zoneResponse{
		Analysis:  a,
		Price:     a.Assignment.Price,
		Zone:      a.Assignment.Zone,
		ZoneLabel: chart.Label(a.Assignment.Zone),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	symbol := collector.NormalizeSymbol(mux.Vars(r)["symbol"])
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	hist, err := s.opts.Recorder.History(r.Context(), symbol, limit)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("load history")
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if hist == nil {
		hist = []recorder.Snapshot{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"symbol": symbol, "history": hist})
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Presets)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	a, err := s.analyze(r, mux.Vars(r)["symbol"])
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf, a); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (s *Server) analyze(r *http.Request, symbol string) (*model.Analysis, error) {
	a, err := s.analyzer.Analyze(r.Context(), symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Str("request_id", RequestID(r.Context())).Msg("analysis failed")
		return nil, err
	}
	if err := s.opts.Recorder.RecordAnalysis(r.Context(), a); err != nil {
		log.Error().Err(err).Str("symbol", a.Symbol).Msg("record analysis")
	}
	return a, nil
}

type bandRow struct {
	Label   string
	Color   string
	Range   string
	Current bool
}

type indexData struct {
	Symbol   string
	Presets  []config.Preset
	Selected string
	Error    string
	Analysis *model.Analysis
	Label    string
	Chart    template.HTML
	Bands    []bandRow
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := q.Get("symbol")
	if preset := q.Get("preset"); preset != "" {
		symbol = preset
	}
	data := indexData{
		Symbol:   collector.NormalizeSymbol(symbol),
		Presets:  s.opts.Presets,
		Selected: q.Get("preset"),
	}

	status := http.StatusOK
	if data.Symbol != "" {
		a, err := s.analyze(r, data.Symbol)
		if err != nil {
			status = errorStatus(err)
			data.Error = err.Error()
		} else {
			data.Analysis = a
			data.Label = chart.Label(a.Assignment.Zone)
			data.Bands = bandRows(a)
			var buf bytes.Buffer
			if err := chart.Render(&buf, a); err != nil {
				log.Error().Err(err).Str("symbol", a.Symbol).Msg("render chart")
			} else {
				data.Chart = template.HTML(buf.String())
			}
		}
	}

	var page bytes.Buffer
	if err := indexTmpl.Execute(&page, data); err != nil {
		log.Error().Err(err).Msg("render index")
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(page.Bytes())
}

func bandRows(a *model.Analysis) []bandRow {
	rows := make([]bandRow, 0, len(a.Bands))
	for _, z := range chart.LegendOrder() {
		b, ok := a.Band(z)
		if !ok {
			continue
		}
		rows = append(rows, bandRow{
			Label:   chart.Label(z),
			Color:   chart.Color(z),
			Range:   notifier.FormatBandRange(b),
			Current: z == a.Assignment.Zone,
		})
	}
	return rows
}
