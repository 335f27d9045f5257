package ui

import (
	"errors"
	"testing"

	"github.com/manifoldco/promptui"

	"github.com/NikitaDmitryuk/ani-dl/internal/downloader"
)

func TestMapError(t *testing.T) {
	other := errors.New("terminal gone")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"interrupt quits", promptui.ErrInterrupt, ErrQuit},
		{"eof goes back", promptui.ErrEOF, ErrBack},
		{"abort goes back", promptui.ErrAbort, ErrBack},
		{"other passes through", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapError(tt.in); !errors.Is(got, tt.want) || (tt.want == nil && got != nil) {
				t.Errorf("mapError(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestActionString(t *testing.T) {
	if ActionDownload.String() != "Download" || ActionWatch.String() != "Watch" {
		t.Errorf("unexpected labels: %s, %s", ActionDownload, ActionWatch)
	}
	if Action(9).String() != "unknown" {
		t.Error("unknown action label")
	}
}

func TestRangeValidator(t *testing.T) {
	validate := rangeValidator(30)

	tests := []struct {
		input string
		want  error
	}{
		{"0-4", nil},
		{" 3 - 29 ", nil},
		{"5", downloader.ErrInvalidRangeFormat},
		{"a-b", downloader.ErrInvalidRangeFormat},
		{"10-2", downloader.ErrRangeOutOfBounds},
		{"0-30", downloader.ErrRangeOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := validate(tt.input)
			if tt.want == nil && err != nil {
				t.Fatalf("validate(%q) = %v, want nil", tt.input, err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("validate(%q) = %v, want %v", tt.input, err, tt.want)
			}
		})
	}
}
