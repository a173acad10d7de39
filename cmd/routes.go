package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/wifisurvey/internal/export"
	"github.com/sells-group/wifisurvey/internal/geo"
	"github.com/sells-group/wifisurvey/internal/model"
	"github.com/sells-group/wifisurvey/internal/monitoring"
	"github.com/sells-group/wifisurvey/internal/pipeline"
	"github.com/sells-group/wifisurvey/internal/security"
	"github.com/sells-group/wifisurvey/internal/snapshot"
	"github.com/sells-group/wifisurvey/internal/spectrum"
)

const maxBatchBytes = 4 << 20

// handlers serves the presentation API over the latest committed snapshot.
type handlers struct {
	pipe *pipeline.Pipeline
}

// buildRouter returns the HTTP API. metrics may be nil, in which case
// /metrics is not mounted.
func buildRouter(pipe *pipeline.Pipeline, metrics *monitoring.Collector) http.Handler {
	h := &handlers{pipe: pipe}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)

	r.Route("/snapshot", func(sr chi.Router) {
		sr.Get("/", h.snapshot)
		sr.Get("/summary", h.summary)
	})
	r.Get("/clusters", h.clusters)
	r.Get("/clusters.geojson", h.geojson)
	r.Get("/clusters/{ssid}", h.cluster)
	r.Get("/observations/{bssid}", h.observation)
	r.Get("/spectrum", h.spectrum)
	r.Post("/batches", h.submitBatch)

	r.Route("/query", func(qr chi.Router) {
		qr.Get("/classify", h.classify)
		qr.Get("/distance", h.distance)
	})

	if metrics != nil {
		r.Handle("/metrics", metrics.Handler())
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("write response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(body)); err != nil {
		zap.L().Debug("write response failed", zap.Error(err))
	}
}

// current returns the committed snapshot, answering 404 when there is none.
func (h *handlers) current(w http.ResponseWriter) *snapshot.Snapshot {
	snap := h.pipe.Store().Current()
	if snap == nil {
		writeError(w, http.StatusNotFound, "no snapshot committed yet")
	}
	return snap
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{"status": "ok"}
	if snap := h.pipe.Store().Current(); snap != nil {
		resp["cycle_seq"] = snap.CycleSeq
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) snapshot(w http.ResponseWriter, _ *http.Request) {
	if snap := h.current(w); snap != nil {
		writeJSON(w, http.StatusOK, snap)
	}
}

func (h *handlers) summary(w http.ResponseWriter, _ *http.Request) {
	snap := h.current(w)
	if snap == nil {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := export.Summary(w, snap); err != nil {
		zap.L().Debug("write summary failed", zap.Error(err))
	}
}

// clusterView is a cluster in the listing, without its members.
type clusterView struct {
	SSID         string             `json:"ssid"`
	NetworkCount int                `json:"network_count"`
	AverageRSSI  int                `json:"average_rssi"`
	OverallRisk  model.NetworkRisk  `json:"overall_risk"`
	IsOpen       bool               `json:"is_open"`
	Center       *model.GeoPosition `json:"center,omitempty"`
	Coverage     float64            `json:"coverage_radius_meters"`
	Snippet      string             `json:"snippet"`
}

func (h *handlers) clusters(w http.ResponseWriter, _ *http.Request) {
	snap := h.current(w)
	if snap == nil {
		return
	}
	sorted := snap.Clusters.Sorted()
	views := make([]clusterView, 0, len(sorted))
	for _, c := range sorted {
		views = append(views, clusterView{
			SSID:         c.SSID,
			NetworkCount: c.NetworkCount,
			AverageRSSI:  c.AverageRSSI,
			OverallRisk:  c.OverallRisk,
			IsOpen:       c.IsOpen,
			Center:       c.Center,
			Coverage:     c.CoverageRadius,
			Snippet:      export.MapSnippet(c),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cycle_seq": snap.CycleSeq,
		"clusters":  views,
	})
}

func (h *handlers) cluster(w http.ResponseWriter, r *http.Request) {
	snap := h.current(w)
	if snap == nil {
		return
	}
	ssid := chi.URLParam(r, "ssid")
	c := snap.Cluster(ssid)
	if c == nil {
		writeError(w, http.StatusNotFound, "cluster not found: "+ssid)
		return
	}
	switch r.URL.Query().Get("format") {
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := export.ClusterDetail(w, c); err != nil {
			zap.L().Debug("write cluster detail failed", zap.Error(err))
		}
	case "share":
		writeText(w, export.ShareText(c))
	default:
		writeJSON(w, http.StatusOK, c)
	}
}

func (h *handlers) observation(w http.ResponseWriter, r *http.Request) {
	snap := h.current(w)
	if snap == nil {
		return
	}
	bssid := chi.URLParam(r, "bssid")
	o, ok := snap.Observation(bssid)
	if !ok {
		writeError(w, http.StatusNotFound, "access point not found: "+bssid)
		return
	}
	if r.URL.Query().Get("format") == "text" {
		writeText(w, export.ObservationText(o))
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *handlers) geojson(w http.ResponseWriter, r *http.Request) {
	snap := h.current(w)
	if snap == nil {
		return
	}
	members, _ := strconv.ParseBool(r.URL.Query().Get("members"))
	data, err := export.GeoJSON(snap, export.GeoJSONOptions{Members: members, Observer: true})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(data)
}

func (h *handlers) spectrum(w http.ResponseWriter, _ *http.Request) {
	if snap := h.current(w); snap != nil {
		writeJSON(w, http.StatusOK, snap.Spectrum)
	}
}

func (h *handlers) submitBatch(w http.ResponseWriter, r *http.Request) {
	var batch model.ObservationBatch
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBytes)).Decode(&batch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if batch.ObserverPosition.Provenance == "" {
		batch.ObserverPosition.Provenance = model.ProvenanceMeasured
	}
	if err := batch.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.pipe.Run(r.Context(), batch)
	switch {
	case eris.Is(err, snapshot.ErrStaleCycle):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":     "cycle superseded by a newer batch",
			"cycle_seq": snap.CycleSeq,
		})
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusCreated, snap.Summarize())
	}
}

// classifyResult is the answer to a capability string query. SecurityType
// and Risk come from Classify; Detail is the independent Describe breakdown.
type classifyResult struct {
	Capabilities    string             `json:"capabilities"`
	SecurityType    model.SecurityType `json:"security_type"`
	Risk            model.NetworkRisk  `json:"risk"`
	RiskDescription string             `json:"risk_description"`
	Color           string             `json:"color"`
	Detail          model.SecurityInfo `json:"detail"`
}

func classifyCapabilities(caps string) classifyResult {
	st := security.Classify(caps)
	risk := security.AssessRisk(st)
	return classifyResult{
		Capabilities:    caps,
		SecurityType:    st,
		Risk:            risk,
		RiskDescription: risk.Description(),
		Color:           risk.Color(),
		Detail:          security.Describe(caps),
	}
}

func (h *handlers) classify(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, classifyCapabilities(r.URL.Query().Get("caps")))
}

// distanceResult is the answer to a signal strength query.
type distanceResult struct {
	RSSI             int     `json:"rssi"`
	FrequencyMHz     int     `json:"frequency_mhz"`
	DistanceMeters   float64 `json:"distance_meters"`
	Available        bool    `json:"available"`
	SignalLevel      string  `json:"signal_level"`
	SignalQuality    string  `json:"signal_quality"`
	SignalPercentage int     `json:"signal_percentage"`
	Band             string  `json:"band"`
	Channel          int     `json:"channel"`
}

func estimate(rssi, freq int) distanceResult {
	d := geo.EstimateDistance(rssi, freq)
	return distanceResult{
		RSSI:             rssi,
		FrequencyMHz:     freq,
		DistanceMeters:   d,
		Available:        d != geo.UnavailableDistance,
		SignalLevel:      geo.ClassifySignal(rssi),
		SignalQuality:    geo.SignalQuality(rssi),
		SignalPercentage: geo.SignalPercentage(rssi),
		Band:             spectrum.BandFor(freq),
		Channel:          spectrum.ChannelFor(freq),
	}
}

func (h *handlers) distance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rssi, err := strconv.Atoi(q.Get("rssi"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "rssi must be an integer")
		return
	}
	freq, err := strconv.Atoi(q.Get("freq"))
	if err != nil || freq <= 0 {
		writeError(w, http.StatusBadRequest, "freq must be a positive integer")
		return
	}
	writeJSON(w, http.StatusOK, estimate(rssi, freq))
}
