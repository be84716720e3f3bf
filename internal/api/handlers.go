// Package api exposes the probe and conversion operations over HTTP:
// inspect a file, start a job, and poll job outcomes. Prometheus metrics
// are served alongside.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/backmassage/vconv/internal/config"
	"github.com/backmassage/vconv/internal/ffmpeg"
	"github.com/backmassage/vconv/internal/job"
	"github.com/backmassage/vconv/internal/media"
	"github.com/backmassage/vconv/internal/probe"
)

// Handler serves the API routes.
type Handler struct {
	prober    probe.Prober
	converter *job.Converter
	jobs      *Registry
	log       *zerolog.Logger

	// baseCtx bounds every job started through the API. Request contexts
	// end with the response, so they cannot be used for the process.
	baseCtx context.Context
}

// NewHandler wires a prober, a converter and an empty registry. Jobs started
// through the handler run until they finish or ctx is cancelled.
func NewHandler(ctx context.Context, cfg *config.Config, runner ffmpeg.Runner, log *zerolog.Logger) *Handler {
	h := &Handler{
		prober:  probe.New(cfg, runner),
		jobs:    NewRegistry(),
		log:     log,
		baseCtx: ctx,
	}
	h.converter = &job.Converter{
		Runner:     runner,
		Binary:     cfg.FFmpegPath,
		Logger:     log,
		OnComplete: h.jobCompleted,
	}
	return h
}

func (h *Handler) jobCompleted(j *job.Job) {
	o, _ := j.Outcome()
	var ev *zerolog.Event
	if o.OK() {
		ev = h.log.Info().Str("output", o.Output)
	} else {
		ev = h.log.Warn().Str("kind", string(o.Kind))
	}
	ev.Str("job", j.ID).Str("status", string(o.Status)).Dur("elapsed", j.Elapsed()).Msg("job finished")
}

// --- Wire types ---

type probeRequest struct {
	Path string `json:"path"`
}

type probeResponse struct {
	Path       string           `json:"path"`
	Bitrate    int              `json:"bitrate"`
	Resolution media.Resolution `json:"resolution"`
	Coverage   string           `json:"coverage"`
	Suggested  media.Request    `json:"suggested"`
	Rating     string           `json:"rating"`
}

type startRequest struct {
	Source  string         `json:"source"`
	Request *media.Request `json:"request,omitempty"` // Omitted: seed from a probe.
}

type jobView struct {
	ID             string        `json:"id"`
	Source         string        `json:"source"`
	Destination    string        `json:"destination,omitempty"`
	Request        media.Request `json:"request"`
	State          job.State     `json:"state"`
	Started        time.Time     `json:"started"`
	ElapsedSeconds float64       `json:"elapsed_seconds"`
	Outcome        *job.Outcome  `json:"outcome,omitempty"`
}

func viewOf(j *job.Job) jobView {
	v := jobView{
		ID:             j.ID,
		Source:         j.Source,
		Destination:    j.Destination,
		Request:        j.Request,
		State:          j.State(),
		Started:        j.Started,
		ElapsedSeconds: j.Elapsed().Seconds(),
	}
	if o, ok := j.Outcome(); ok {
		v.Outcome = &o
	}
	return v
}

// --- Handlers ---

// Presets handles GET /api/presets.
func (h *Handler) Presets(w http.ResponseWriter, r *http.Request) {
	var resolutions []string
	for _, p := range media.Presets() {
		resolutions = append(resolutions, p.String())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"formats":     media.Formats(),
		"resolutions": resolutions,
		"bitrate": map[string]int{
			"min":     media.BitrateMin,
			"max":     media.BitrateMax,
			"default": media.BitrateDefault,
		},
		"defaults": media.DefaultRequest(),
	})
}

// Probe handles POST /api/probe.
func (h *Handler) Probe(w http.ResponseWriter, r *http.Request) {
	var req probeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeError(w, http.StatusBadRequest, "body must be {\"path\": \"...\"}")
		return
	}
	if _, err := os.Stat(req.Path); err != nil {
		writeError(w, http.StatusNotFound, "source not found")
		return
	}

	res := h.prober.Inspect(r.Context(), req.Path)
	suggested := probe.SuggestRequest(req.Path, res)
	writeJSON(w, http.StatusOK, probeResponse{
		Path:       req.Path,
		Bitrate:    res.Bitrate,
		Resolution: res.Resolution,
		Coverage:   res.Coverage(),
		Suggested:  suggested,
		Rating:     media.Rate(suggested.Resolution, suggested.Bitrate).String(),
	})
}

// StartJob handles POST /api/jobs.
func (h *Handler) StartJob(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Source == "" {
		writeError(w, http.StatusBadRequest, "body must be {\"source\": \"...\", \"request\": {...}}")
		return
	}
	if _, err := os.Stat(req.Source); err != nil {
		writeError(w, http.StatusNotFound, "source not found")
		return
	}

	var convReq media.Request
	if req.Request != nil {
		convReq = *req.Request
		if !media.BitrateSelectable(convReq.Bitrate) {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("bitrate %d out of range (use %d-%d kb/s)", convReq.Bitrate, media.BitrateMin, media.BitrateMax))
			return
		}
	} else {
		convReq = probe.SuggestRequest(req.Source, h.prober.Inspect(r.Context(), req.Source))
	}

	j, err := h.converter.Start(h.baseCtx, req.Source, convReq)
	if err != nil {
		if errors.Is(err, media.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.jobs.Add(j)
	h.log.Info().Str("job", j.ID).Str("source", j.Source).Str("destination", j.Destination).Msg("job started")

	w.Header().Set("Location", "/api/jobs/"+j.ID)
	writeJSON(w, http.StatusAccepted, viewOf(j))
}

// ListJobs handles GET /api/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := h.jobs.List()
	views := make([]jobView, 0, len(jobs))
	for _, j := range jobs {
		views = append(views, viewOf(j))
	}
	writeJSON(w, http.StatusOK, views)
}

// GetJob handles GET /api/jobs/{id}.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	j, ok := h.jobs.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(j))
}

// HealthCheck handles GET /healthz.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
