package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/backmassage/vconv/internal/media"
)

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/media/clips", "/media/clips"},
		{"single trailing slash", "/media/clips/", "/media/clips"},
		{"multiple trailing slashes", "/media/clips///", "/media/clips"},
		{"root path", "/", "/"},
		{"relative path", "clips", "clips"},
		{"relative with slash", "clips/", "clips"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDirArg(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeDirArg(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with input", func(*Config) {}, false},
		{"json probe mode", func(c *Config) { c.ProbeMode = ProbeJSON }, false},
		{"unknown probe mode", func(c *Config) { c.ProbeMode = "guess" }, true},
		{"empty color mode", func(c *Config) { c.ColorMode = "" }, true},
		{"format override", func(c *Config) { c.Format = media.FormatMKV }, false},
		{"unknown format", func(c *Config) { c.Format = "flv" }, true},
		{"negative bitrate", func(c *Config) { c.Bitrate = -1 }, true},
		{"bitrate below range", func(c *Config) { c.Bitrate = 100 }, true},
		{"bitrate above range", func(c *Config) { c.Bitrate = 60000 }, true},
		{"bitrate at bounds", func(c *Config) { c.Bitrate = 500 }, false},
		{"preset resolution", func(c *Config) { c.Resolution = media.Resolution{Width: 1280, Height: 720} }, false},
		{"non-preset resolution", func(c *Config) { c.Resolution = media.Resolution{Width: 800, Height: 600} }, true},
		{"zero jobs", func(c *Config) { c.Jobs = 0 }, true},
		{"empty ffmpeg path", func(c *Config) { c.FFmpegPath = "" }, true},
		{"no inputs", func(c *Config) { c.Inputs = nil }, true},
		{"check skips inputs", func(c *Config) { c.Inputs = nil; c.CheckOnly = true }, false},
		{"serve skips inputs", func(c *Config) { c.Inputs = nil; c.ServeAddr = ":8080" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Inputs = []string{"clip.mp4"}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig_SaneDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.FFmpegPath != "ffmpeg" || cfg.FFprobePath != "ffprobe" {
		t.Errorf("tool paths = %q/%q", cfg.FFmpegPath, cfg.FFprobePath)
	}
	if cfg.ProbeMode != ProbeScrape {
		t.Errorf("ProbeMode = %q, want scrape", cfg.ProbeMode)
	}
	if cfg.Jobs != 1 {
		t.Errorf("Jobs = %d, want 1", cfg.Jobs)
	}
	if cfg.ColorMode != ColorAuto {
		t.Errorf("ColorMode = %q, want auto", cfg.ColorMode)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestApplyOverrides(t *testing.T) {
	seeded := media.Request{
		Format:     media.FormatMP4,
		Bitrate:    2400,
		Resolution: media.Resolution{Width: 640, Height: 480},
		Audio:      media.AudioKeep,
		Metadata:   media.MetadataKeep,
	}

	cfg := DefaultConfig()
	if got := cfg.ApplyOverrides(seeded); got != seeded {
		t.Errorf("no overrides changed request: %+v", got)
	}

	cfg.Format = media.FormatWebM
	cfg.Bitrate = 5000
	cfg.Resolution = media.Resolution{Width: 1920, Height: 1080}
	cfg.RemoveAudio = true
	cfg.StripMetadata = true
	want := media.Request{
		Format:     media.FormatWebM,
		Bitrate:    5000,
		Resolution: media.Resolution{Width: 1920, Height: 1080},
		Audio:      media.AudioRemove,
		Metadata:   media.MetadataStrip,
	}
	if got := cfg.ApplyOverrides(seeded); got != want {
		t.Errorf("ApplyOverrides = %+v, want %+v", got, want)
	}
}

func TestParseArgs(t *testing.T) {
	cfg := DefaultConfig()
	args := []string{
		"-f", "MKV",
		"--bitrate", "2500k",
		"-r", "1280x720",
		"--remove-audio",
		"--strip-metadata",
		"-j", "3",
		"--probe-mode", "json",
		"--no-color",
		"-v",
		"clips/", "intro.mov",
	}
	if err := parseArgs(&cfg, "test", args, io.Discard); err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if cfg.Format != media.FormatMKV {
		t.Errorf("Format = %q", cfg.Format)
	}
	if cfg.Bitrate != 2500 {
		t.Errorf("Bitrate = %d", cfg.Bitrate)
	}
	if cfg.Resolution != (media.Resolution{Width: 1280, Height: 720}) {
		t.Errorf("Resolution = %v", cfg.Resolution)
	}
	if !cfg.RemoveAudio || !cfg.StripMetadata {
		t.Error("audio/metadata flags not set")
	}
	if cfg.Jobs != 3 || cfg.ProbeMode != ProbeJSON || cfg.ColorMode != ColorNever || !cfg.Verbose {
		t.Errorf("behavior flags = jobs %d, probe %q, color %q, verbose %v", cfg.Jobs, cfg.ProbeMode, cfg.ColorMode, cfg.Verbose)
	}
	if len(cfg.Inputs) != 2 || cfg.Inputs[0] != "clips" || cfg.Inputs[1] != "intro.mov" {
		t.Errorf("Inputs = %v", cfg.Inputs)
	}
}

func TestParseArgs_BadValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"format", []string{"-f", "flv"}},
		{"bitrate", []string{"-b", "fast"}},
		{"zero bitrate", []string{"-b", "0"}},
		{"bitrate below range", []string{"-b", "100"}},
		{"bitrate above range", []string{"--bitrate", "50001k"}},
		{"resolution", []string{"-r", "big"}},
		{"probe mode", []string{"--probe-mode", "guess"}},
		{"unknown flag", []string{"--turbo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if err := parseArgs(&cfg, "test", tt.args, io.Discard); err == nil {
				t.Errorf("parseArgs(%v) succeeded, want error", tt.args)
			}
		})
	}
}

func TestParseArgs_HelpAndVersion(t *testing.T) {
	cfg := DefaultConfig()
	if err := parseArgs(&cfg, "test", []string{"-h"}, io.Discard); !errors.Is(err, errShowHelp) {
		t.Errorf("-h returned %v", err)
	}
	cfg = DefaultConfig()
	if err := parseArgs(&cfg, "test", []string{"--version"}, io.Discard); !errors.Is(err, errShowVersion) {
		t.Errorf("--version returned %v", err)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "VCONV_FFMPEG=/opt/ffmpeg/bin/ffmpeg\nVCONV_JOBS=4\nVCONV_CORS_ORIGINS=http://a.test, http://b.test\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	// Variables already present in the environment win over the file.
	t.Setenv("VCONV_JOBS", "2")
	// Ensure file-provided keys are cleaned up after the test.
	t.Setenv("VCONV_FFMPEG", "")
	t.Setenv("VCONV_CORS_ORIGINS", "")
	os.Unsetenv("VCONV_FFMPEG")
	os.Unsetenv("VCONV_CORS_ORIGINS")

	cfg := DefaultConfig()
	if err := LoadEnv(&cfg, envFile, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if cfg.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("FFmpegPath = %q", cfg.FFmpegPath)
	}
	if cfg.Jobs != 2 {
		t.Errorf("Jobs = %d, want 2 from process env", cfg.Jobs)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadEnv_BadJobs(t *testing.T) {
	t.Setenv("VCONV_JOBS", "many")
	cfg := DefaultConfig()
	if err := LoadEnv(&cfg, filepath.Join(t.TempDir(), "none.env")); err == nil {
		t.Error("expected error for non-numeric VCONV_JOBS")
	}
}
