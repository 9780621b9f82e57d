package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/render"
	"github.com/UnknownOlympus/meridian/internal/table"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const contentTypeGeoJSON = "application/geo+json"

type dashboardResponse struct {
	*models.Dashboard
	Map render.MapView `json:"map"`
}

// indexPage embeds every chart and layer of one render pass, so the page
// never mixes views from different passes.
type indexPage struct {
	Dashboard   *models.Dashboard
	Map         render.MapView
	Markers     []markerRow
	TopChart    template.URL
	BottomChart template.URL
	MarkerLayer template.JS
	HeatLayer   template.JS
}

type markerRow struct {
	models.CityDelay
	Color string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	dashboard, ok := s.render(w, r)
	if !ok {
		return
	}

	mapView := render.NewMapView(dashboard.DelayRange)
	page := indexPage{Dashboard: dashboard, Map: mapView, Markers: make([]markerRow, 0, len(dashboard.DelayMarkers))}
	for _, m := range dashboard.DelayMarkers {
		page.Markers = append(page.Markers, markerRow{CityDelay: m, Color: mapView.Scale.Hex(m.Delay)})
	}

	var err error
	if page.TopChart, err = chartDataURL(render.ChartTop, dashboard.TopRevenue); err == nil {
		page.BottomChart, err = chartDataURL(render.ChartBottom, dashboard.BottomRevenue)
	}
	if err == nil {
		page.MarkerLayer, err = marshalTemplateJS(render.MarkerLayer(dashboard.DelayMarkers, dashboard.DelayRange))
	}
	if err == nil {
		page.HeatLayer, err = marshalTemplateJS(render.HeatLayer(dashboard.DelayDensity))
	}
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to prepare index page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err = s.index.Execute(&buf, page); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to execute index template", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.write(w, r, buf.Bytes())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, ok := s.render(w, r)
	if !ok {
		return
	}

	s.writeJSON(w, r, "application/json", dashboardResponse{
		Dashboard: dashboard,
		Map:       render.NewMapView(dashboard.DelayRange),
	})
}

func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	dashboard, ok := s.render(w, r)
	if !ok {
		return
	}

	s.writeJSON(w, r, contentTypeGeoJSON, render.MarkerLayer(dashboard.DelayMarkers, dashboard.DelayRange))
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	dashboard, ok := s.render(w, r)
	if !ok {
		return
	}

	s.writeJSON(w, r, contentTypeGeoJSON, render.HeatLayer(dashboard.DelayDensity))
}

func (s *Server) handleRevenueChart(w http.ResponseWriter, r *http.Request) {
	kind, err := render.ParseChartKind(chi.URLParam(r, "view"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	dashboard, ok := s.render(w, r)
	if !ok {
		return
	}

	view := dashboard.TopRevenue
	if kind == render.ChartBottom {
		view = dashboard.BottomRevenue
	}

	var buf bytes.Buffer
	if err = render.WriteRevenuePNG(&buf, kind, view); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to render revenue chart", "chart", kind, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	s.write(w, r, buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.log.DebugContext(ctx, "Performing health checks...")

	status, body := http.StatusOK, "OK"
	if s.health != nil {
		if err := s.health.Ping(ctx); err != nil {
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
	}

	w.WriteHeader(status)
	s.write(w, r, []byte(body))

	s.log.DebugContext(ctx, "Health checks completed", "status", status)
}

// render runs a render pass and answers the request itself on failure.
func (s *Server) render(w http.ResponseWriter, r *http.Request) (*models.Dashboard, bool) {
	ctx := r.Context()

	dashboard, err := s.renderer.Render(ctx)
	if err == nil {
		return dashboard, true
	}

	reqID := middleware.GetReqID(ctx)
	switch {
	case ctx.Err() != nil:
		s.log.DebugContext(ctx, "Client went away during render pass", "request_id", reqID)
	case errors.Is(err, table.ErrMissingColumn):
		s.log.ErrorContext(ctx, "Order table schema is invalid", "request_id", reqID, "error", err)
		http.Error(w, "order table is malformed", http.StatusInternalServerError)
	default:
		s.log.ErrorContext(ctx, "Render pass failed", "request_id", reqID, "error", err)
		http.Error(w, "order table is unavailable", http.StatusBadGateway)
	}

	return nil, false
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, contentType string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to encode response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	s.write(w, r, body)
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, body []byte) {
	if _, err := w.Write(body); err != nil {
		s.log.ErrorContext(r.Context(), "failed to write reply", "error", err)
	}
}

func chartDataURL(kind render.ChartKind, view []models.CityRevenue) (template.URL, error) {
	var buf bytes.Buffer
	if err := render.WriteRevenuePNG(&buf, kind, view); err != nil {
		return "", err
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}

func marshalTemplateJS(value any) (template.JS, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to encode layer: %w", err)
	}
	return template.JS(payload), nil
}

func formatBRL(v float64) string {
	return fmt.Sprintf("R$ %.2f", v)
}

func formatDays(v float64) string {
	return fmt.Sprintf("%.0f days", v)
}
