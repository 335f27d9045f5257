package ytdlp

import (
	"testing"
)

func TestParseProgressLine(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantOK      bool
		wantPercent float32
		hasPercent  bool
		wantRate    string
	}{
		{
			name:        "full progress line",
			line:        "[download]  42.5% of 100MiB at 3.21MiB/s ETA 00:10",
			wantOK:      true,
			wantPercent: 42.5,
			hasPercent:  true,
			wantRate:    "3.21MiB/s",
		},
		{
			name:        "approximate size and padded rate",
			line:        "[download]   7.0% of ~ 1.20GiB at    512.00KiB/s ETA 39:58 (frag 3/120)",
			wantOK:      true,
			wantPercent: 7,
			hasPercent:  true,
			wantRate:    "512.00KiB/s",
		},
		{
			name:        "final line without rate",
			line:        "[download] 100% of 100.00MiB in 00:00:31",
			wantOK:      true,
			wantPercent: 100,
			hasPercent:  true,
		},
		{
			name:   "tag without percent",
			line:   "[download] Destination: Episode 1.mp4",
			wantOK: false,
		},
		{
			name:   "percent without tag",
			line:   "[ffmpeg]  42.5% of 100MiB at 3.21MiB/s ETA 00:10",
			wantOK: false,
		},
		{
			name:   "no percent and no tag",
			line:   "[youtube] abc123: Downloading webpage",
			wantOK: false,
		},
		{
			name:     "malformed percent keeps rate",
			line:     "[download]  N/A% of 100MiB at 3.21MiB/s ETA 00:10",
			wantOK:   true,
			wantRate: "3.21MiB/s",
		},
		{
			name:   "malformed percent and no rate",
			line:   "[download] abc% done",
			wantOK: false,
		},
		{
			name:        "last percent wins",
			line:        "[download] 50% of 10% sample  12.5% of 2MiB at 1MiB/s ETA 00:01",
			wantOK:      true,
			wantPercent: 12.5,
			hasPercent:  true,
			wantRate:    "1MiB/s",
		},
		{
			name:   "percent sign right after whitespace",
			line:   "[download] %",
			wantOK: false,
		},
		{
			name:   "not a number token",
			line:   "[download] NaN%",
			wantOK: false,
		},
		{
			name:        "eta before rate marker",
			line:        "[download] ETA 00:10 25% at nowhere",
			wantOK:      true,
			wantPercent: 25,
			hasPercent:  true,
		},
		{
			name:        "tabs as separators",
			line:        "[download]\t33.3%\tof 9MiB at 1.5MiB/s ETA 00:04",
			wantOK:      true,
			wantPercent: 33.3,
			hasPercent:  true,
			wantRate:    "1.5MiB/s",
		},
		{
			name:   "empty line",
			line:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal, ok := ParseProgressLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ParseProgressLine(%q) ok = %v, expected %v", tt.line, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if signal.HasPercent != tt.hasPercent {
				t.Errorf("HasPercent = %v, expected %v", signal.HasPercent, tt.hasPercent)
			}
			if tt.hasPercent && signal.Percent != tt.wantPercent {
				t.Errorf("Percent = %v, expected %v", signal.Percent, tt.wantPercent)
			}
			if signal.Rate != tt.wantRate {
				t.Errorf("Rate = %q, expected %q", signal.Rate, tt.wantRate)
			}
		})
	}
}

func TestClampPercent(t *testing.T) {
	tests := []struct {
		in       float32
		expected int
	}{
		{-3, 0},
		{0, 0},
		{42.9, 42},
		{99.99, 99},
		{100, 100},
		{250, 100},
	}

	for _, tt := range tests {
		if got := ClampPercent(tt.in); got != tt.expected {
			t.Errorf("ClampPercent(%v) = %d, expected %d", tt.in, got, tt.expected)
		}
	}
}
