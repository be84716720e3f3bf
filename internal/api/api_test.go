package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/backmassage/vconv/internal/config"
	"github.com/backmassage/vconv/internal/ffmpeg"
	"github.com/backmassage/vconv/internal/job"
	"github.com/backmassage/vconv/internal/media"
)

const probeStderr = `  Duration: 00:00:05.00, start: 0.000000, bitrate: 3100 kb/s
  Stream #0:0: Video: h264 (High) (avc1 / 0x31637661), yuv420p, 1920x1080, 25 fps
`

// fakeRunner answers probes with probeStderr and completes conversions by
// writing the destination.
type fakeRunner struct{}

func (fakeRunner) Run(_ context.Context, _ string, args ...string) ffmpeg.ExecResult {
	if len(args) == 3 && args[1] == "-i" {
		return ffmpeg.ExecResult{Stderr: probeStderr, Spawned: true, ExitCode: 1}
	}
	_ = os.WriteFile(args[len(args)-1], []byte("converted"), 0o644)
	return ffmpeg.ExecResult{Spawned: true}
}

// syncBuffer collects log output written from handler and job goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestServer(t *testing.T) (*httptest.Server, *Handler) {
	t.Helper()
	log := zerolog.Nop()
	return newLoggedTestServer(t, &log)
}

func newLoggedTestServer(t *testing.T, log *zerolog.Logger) (*httptest.Server, *Handler) {
	t.Helper()
	cfg := config.DefaultConfig()
	h := NewHandler(context.Background(), &cfg, fakeRunner{}, log)
	srv := httptest.NewServer(NewServerHandler(h, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv, h
}

func newSource(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("source"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestPresets(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/presets")
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Formats     []string       `json:"formats"`
		Resolutions []string       `json:"resolutions"`
		Bitrate     map[string]int `json:"bitrate"`
	}
	decode(t, resp, &body)

	if strings.Join(body.Formats, ",") != "webm,mp4,avi,mkv,mov" {
		t.Errorf("formats = %v", body.Formats)
	}
	if len(body.Resolutions) != 5 || body.Resolutions[0] != "640x480" {
		t.Errorf("resolutions = %v", body.Resolutions)
	}
	if body.Bitrate["min"] != 500 || body.Bitrate["max"] != 50000 {
		t.Errorf("bitrate = %v", body.Bitrate)
	}
}

func TestProbe(t *testing.T) {
	srv, _ := newTestServer(t)
	src := newSource(t, "talk.mov")

	resp := postJSON(t, srv.URL+"/api/probe", probeRequest{Path: src})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body probeResponse
	decode(t, resp, &body)

	if body.Bitrate != 3100 || body.Resolution != (media.Resolution{Width: 1920, Height: 1080}) {
		t.Errorf("probe = %+v", body)
	}
	if body.Rating != "good" {
		t.Errorf("rating = %q", body.Rating)
	}
	if body.Coverage != "full" {
		t.Errorf("coverage = %q", body.Coverage)
	}
	if body.Suggested.Format != media.FormatMOV || body.Suggested.Bitrate != 3100 {
		t.Errorf("suggested = %+v", body.Suggested)
	}
}

func TestProbe_BadInput(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/probe", map[string]string{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty body status = %d", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/api/probe", probeRequest{Path: "/definitely/missing.mp4"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing file status = %d", resp.StatusCode)
	}
}

func TestStartJob_AndPoll(t *testing.T) {
	srv, h := newTestServer(t)
	src := newSource(t, "clip.mp4")

	req := media.DefaultRequest()
	req.Format = media.FormatMKV
	resp := postJSON(t, srv.URL+"/api/jobs", startRequest{Source: src, Request: &req})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, "/api/jobs/") {
		t.Errorf("Location = %q", loc)
	}
	var started jobView
	decode(t, resp, &started)
	if started.ID == "" || filepath.Base(started.Destination) != "clip_converted.mkv" {
		t.Fatalf("started = %+v", started)
	}

	j, ok := h.jobs.Get(started.ID)
	if !ok {
		t.Fatal("job not registered")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := j.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	getResp, err := http.Get(srv.URL + "/api/jobs/" + started.ID)
	if err != nil {
		t.Fatal(err)
	}
	var polled jobView
	decode(t, getResp, &polled)
	if polled.State != job.StateCompleted || polled.Outcome == nil || !polled.Outcome.OK() {
		t.Errorf("polled = %+v", polled)
	}

	listResp, err := http.Get(srv.URL + "/api/jobs")
	if err != nil {
		t.Fatal(err)
	}
	var list []jobView
	decode(t, listResp, &list)
	if len(list) != 1 || list[0].ID != started.ID {
		t.Errorf("list = %+v", list)
	}
}

func TestStartJob_SeedsFromProbe(t *testing.T) {
	srv, _ := newTestServer(t)
	src := newSource(t, "clip.avi")

	resp := postJSON(t, srv.URL+"/api/jobs", startRequest{Source: src})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var started jobView
	decode(t, resp, &started)
	want := media.Request{
		Format: media.FormatAVI, Bitrate: 3100,
		Resolution: media.Resolution{Width: 1920, Height: 1080},
		Audio:      media.AudioKeep, Metadata: media.MetadataKeep,
	}
	if started.Request != want {
		t.Errorf("request = %+v, want %+v", started.Request, want)
	}
}

func TestStartJob_InvalidRequest(t *testing.T) {
	srv, h := newTestServer(t)
	src := newSource(t, "clip.mp4")

	req := media.DefaultRequest()
	req.Resolution = media.Resolution{Width: 800, Height: 600}
	resp := postJSON(t, srv.URL+"/api/jobs", startRequest{Source: src, Request: &req})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if len(h.jobs.List()) != 0 {
		t.Error("rejected request was registered")
	}
	entries, _ := os.ReadDir(filepath.Dir(src))
	if len(entries) != 1 {
		t.Errorf("rejected request touched the directory: %d entries", len(entries))
	}
}

func TestGetJob_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/jobs/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d", path, resp.StatusCode)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/jobs", nil)
	req.Header.Set("Origin", "http://ui.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestStartJob_BitrateOutOfRange(t *testing.T) {
	srv, h := newTestServer(t)
	src := newSource(t, "clip.mp4")

	for _, kbps := range []int{100, 60000} {
		req := media.DefaultRequest()
		req.Bitrate = kbps
		resp := postJSON(t, srv.URL+"/api/jobs", startRequest{Source: src, Request: &req})
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("bitrate %d: status = %d, want 400", kbps, resp.StatusCode)
		}
	}
	if len(h.jobs.List()) != 0 {
		t.Error("out-of-range request was registered")
	}
}

func TestJobFinished_LogsFinalStatus(t *testing.T) {
	var out syncBuffer
	log := zerolog.New(&out)
	srv, h := newLoggedTestServer(t, &log)
	src := newSource(t, "clip.mp4")

	resp := postJSON(t, srv.URL+"/api/jobs", startRequest{Source: src})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var started jobView
	decode(t, resp, &started)

	j, ok := h.jobs.Get(started.ID)
	if !ok {
		t.Fatal("job not registered")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := j.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	var finished map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		var ev map[string]interface{}
		if json.Unmarshal([]byte(line), &ev) != nil {
			continue
		}
		if ev["message"] == "job finished" && ev["job"] == started.ID {
			finished = ev
		}
	}
	if finished == nil {
		t.Fatalf("no job finished event in:\n%s", out.String())
	}
	if finished["level"] != "info" || finished["status"] != "success" {
		t.Errorf("job finished event = %v, want level=info status=success", finished)
	}
	if finished["output"] != started.Destination {
		t.Errorf("output = %v, want %s", finished["output"], started.Destination)
	}
}
