package utils

import (
	"testing"
	"time"

	"github.com/sessionintel/session-intel/pkg/types"
)

func TestFormatScore(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"whole number drops decimals", 12.0, "12"},
		{"fraction keeps digits", 3.25, "3.25"},
		{"quarter weight", 0.25, "0.25"},
		{"zero", 0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatScore(tt.score)
			if got != tt.want {
				t.Errorf("FormatScore(%v) = %q, want %q", tt.score, got, tt.want)
			}
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	if got := FormatMinutes(90.25); got != "90.2 min" {
		t.Errorf("FormatMinutes(90.25) = %q, want %q", got, "90.2 min")
	}
	if got := FormatMinutes(0); got != "0.0 min" {
		t.Errorf("FormatMinutes(0) = %q, want %q", got, "0.0 min")
	}
}

func TestFormatTime(t *testing.T) {
	in := time.Date(2026, 1, 20, 7, 30, 0, 0, time.FixedZone("EST", -5*3600))
	if got := FormatTime(in); got != "2026-01-20T12:30:00Z" {
		t.Errorf("FormatTime() = %q, want %q", got, "2026-01-20T12:30:00Z")
	}
}

func TestCalculateTotalSize(t *testing.T) {
	now := time.Now()
	files := []types.SessionFile{
		{SessionID: "a", SizeBytes: 100, ModTime: now},
		{SessionID: "b", SizeBytes: 250, ModTime: now},
		{SessionID: "c", SizeBytes: 0, ModTime: now},
	}

	if got := CalculateTotalSize(files); got != 350 {
		t.Errorf("CalculateTotalSize() = %d, want 350", got)
	}

	if got := CalculateTotalSize(nil); got != 0 {
		t.Errorf("CalculateTotalSize(nil) = %d, want 0", got)
	}
}
