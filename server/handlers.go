package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/heartlive/models"
	"github.com/heartlive/source"
	"github.com/heartlive/templates"
)

const maxSampleBytes = 4 << 10

type chartRenderer interface {
	Render(w io.Writer) error
}

type errorResponse struct {
	Error string `json:"error"`
}

type authorizeResponse struct {
	Granted bool          `json:"granted"`
	Status  models.Status `json:"status"`
	Error   string        `json:"error,omitempty"`
}

// writeJSON encodes v before touching the response so an encoding failure is still a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps monitor and core errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidReading), errors.Is(err, source.ErrMalformedSample):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrAccessRequired),
		errors.Is(err, source.ErrNotAuthorized),
		errors.Is(err, source.ErrNotAvailable):
		return http.StatusForbidden
	case errors.Is(err, models.ErrAlreadyMonitoring), errors.Is(err, models.ErrNotMonitoring):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// HTTP handlers
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	component := templates.Dashboard(s.monitor.Aggregator().CurrentState(), s.monitor.Status())
	templ.Handler(component).ServeHTTP(w, r)
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	component := templates.History(s.monitor.Aggregator().History())
	templ.Handler(component).ServeHTTP(w, r)
}

func (s *Server) historyChartHandler(w http.ResponseWriter, r *http.Request) {
	s.renderChart(w, r, "Heart Rate", generateHistoryChart(s.monitor.Aggregator().History()))
}

func (s *Server) zoneChartHandler(w http.ResponseWriter, r *http.Request) {
	s.renderChart(w, r, "Heart Rate Zones", generateZoneChart(s.monitor.Aggregator().History()))
}

// renderChart embeds the rendered chart in the shared page layout.
func (s *Server) renderChart(w http.ResponseWriter, r *http.Request, title string, chart chartRenderer) {
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		s.log.Error("failed to render chart", "title", title, "err", err)
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}

	component := templates.Chart(title, template.HTML(buf.String()))
	templ.Handler(component).ServeHTTP(w, r)
}

func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Aggregator().CurrentState())
}

func (s *Server) historyAPIHandler(w http.ResponseWriter, r *http.Request) {
	history := s.monitor.Aggregator().History()
	if history == nil {
		history = []models.Reading{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Status())
}

func (s *Server) authorizeHandler(w http.ResponseWriter, r *http.Request) {
	granted, err := s.monitor.RequestAccess(r.Context())
	resp := authorizeResponse{Granted: granted, Status: s.monitor.Status()}
	if err != nil {
		resp.Error = err.Error()
		writeJSON(w, statusFor(err), resp)
		return
	}
	if !granted {
		writeJSON(w, http.StatusForbidden, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) startHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.monitor.Start(r.Context()); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.monitor.Status())
}

func (s *Server) stopHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.monitor.Stop(); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.monitor.Status())
}

func (s *Server) readingHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSampleBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sample, err := source.DecodeSample(body, time.Now())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	state, err := s.monitor.Ingest(sample.BPM, sample.Timestamp)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r, s.monitor.Aggregator().CurrentState)
}
