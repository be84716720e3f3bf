package media

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"webm", FormatWebM, false},
		{"MP4", FormatMP4, false},
		{".mkv", FormatMKV, false},
		{" mov ", FormatMOV, false},
		{"avi", FormatAVI, false},
		{"flv", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormats_OrderAndCopy(t *testing.T) {
	got := Formats()
	want := []Format{FormatWebM, FormatMP4, FormatAVI, FormatMKV, FormatMOV}
	if len(got) != len(want) {
		t.Fatalf("got %d formats, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Formats()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	got[0] = "zzz"
	if Formats()[0] != FormatWebM {
		t.Error("Formats() must return a copy")
	}
}

func TestParseResolution(t *testing.T) {
	tests := []struct {
		in      string
		want    Resolution
		wantErr bool
	}{
		{"1920x1080", Resolution{1920, 1080}, false},
		{"1280X720", Resolution{1280, 720}, false},
		{" 640x480 ", Resolution{640, 480}, false},
		{"1920:1080", Resolution{}, true},
		{"0x1080", Resolution{}, true},
		{"axb", Resolution{}, true},
		{"", Resolution{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseResolution(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseResolution(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseResolution(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolution_Strings(t *testing.T) {
	r := Resolution{2560, 1440}
	if r.String() != "2560x1440" {
		t.Errorf("String() = %q", r.String())
	}
	if r.ScaleArg() != "2560:1440" {
		t.Errorf("ScaleArg() = %q", r.ScaleArg())
	}
	if !r.IsPreset() {
		t.Error("2560x1440 should be a preset")
	}
	if (Resolution{720, 576}).IsPreset() {
		t.Error("720x576 should not be a preset")
	}
	if !(Resolution{}).IsZero() {
		t.Error("zero Resolution should report IsZero")
	}
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr bool
	}{
		{"default is valid", func(*Request) {}, false},
		{"remove audio and strip metadata", func(r *Request) {
			r.Audio = AudioRemove
			r.Metadata = MetadataStrip
		}, false},
		{"zero bitrate", func(r *Request) { r.Bitrate = 0 }, true},
		{"negative bitrate", func(r *Request) { r.Bitrate = -5 }, true},
		{"unknown format", func(r *Request) { r.Format = "flv" }, true},
		{"zero width", func(r *Request) { r.Resolution = Resolution{0, 480} }, true},
		{"non-preset resolution", func(r *Request) { r.Resolution = Resolution{800, 600} }, true},
		{"empty audio policy", func(r *Request) { r.Audio = "" }, true},
		{"unknown metadata policy", func(r *Request) { r.Metadata = "scrub" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := DefaultRequest()
			tt.mutate(&req)
			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("error %v does not wrap ErrInvalidRequest", err)
			}
		})
	}
}

func TestDefaultRequest(t *testing.T) {
	r := DefaultRequest()
	if r.Format != FormatWebM || r.Bitrate != 1000 || r.Resolution != (Resolution{640, 480}) {
		t.Errorf("DefaultRequest() = %+v", r)
	}
	if r.Audio != AudioKeep || r.Metadata != MetadataKeep {
		t.Errorf("DefaultRequest() policies = %q/%q", r.Audio, r.Metadata)
	}
}

func TestClampBitrate(t *testing.T) {
	cases := map[int]int{100: 500, 500: 500, 1234: 1234, 50000: 50000, 90000: 50000}
	for in, want := range cases {
		if got := ClampBitrate(in); got != want {
			t.Errorf("ClampBitrate(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestBitrateSelectable(t *testing.T) {
	cases := map[int]bool{0: false, 100: false, 499: false, 500: true, 2500: true, 50000: true, 50001: false}
	for in, want := range cases {
		if got := BitrateSelectable(in); got != want {
			t.Errorf("BitrateSelectable(%d) = %v, want %v", in, got, want)
		}
	}
}

func TestRate(t *testing.T) {
	tests := []struct {
		res  Resolution
		kbps int
		want Rating
	}{
		{Resolution{640, 480}, 1000, RatingGood},
		{Resolution{640, 480}, 1001, RatingHigh},
		{Resolution{640, 480}, 1600, RatingExcessive},
		{Resolution{1280, 720}, 5000, RatingHigh},
		{Resolution{1920, 1080}, 6000, RatingGood},
		{Resolution{1920, 1080}, 12000, RatingExcessive},
		{Resolution{2560, 1440}, 16000, RatingHigh},
		{Resolution{3840, 2160}, 20000, RatingGood},
		{Resolution{3840, 2160}, 30001, RatingExcessive},
	}
	for _, tt := range tests {
		t.Run(tt.res.String(), func(t *testing.T) {
			if got := Rate(tt.res, tt.kbps); got != tt.want {
				t.Errorf("Rate(%s, %d) = %s, want %s", tt.res, tt.kbps, got, tt.want)
			}
		})
	}
}

func TestIsVideoFile(t *testing.T) {
	dir := t.TempDir()
	mp4Header := []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00}
	pngHeader := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 'I', 'H', 'D', 'R'}

	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"clip.bin", mp4Header, true},
		{"poster.mp4", pngHeader, false},
		{"capture.mkv", []byte("not a recognizable header"), true},
		{"notes.txt", []byte("not a recognizable header"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if err := os.WriteFile(path, tt.data, 0o644); err != nil {
				t.Fatal(err)
			}
			got, err := IsVideoFile(path)
			if err != nil {
				t.Fatalf("IsVideoFile: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsVideoFile(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	if _, err := IsVideoFile(filepath.Join(dir, "missing.mp4")); err == nil {
		t.Error("expected error for missing file")
	}
}
