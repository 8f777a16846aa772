package applog

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want zerolog.Level
		ok   bool
	}{
		{"debug", zerolog.DebugLevel, true},
		{"WARN", zerolog.WarnLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{" error ", zerolog.ErrorLevel, true},
		{"disabled", zerolog.Disabled, true},
		{"", zerolog.InfoLevel, false},
		{"bogus", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		got, ok := parseLevel(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseLevel(%q): got (%v,%v), want (%v,%v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
		ok   bool
	}{
		{"true", true, true},
		{"1", true, true},
		{"false", false, true},
		{"", false, false},
		{"notabool", false, false},
	}
	for _, tt := range tests {
		got, ok := parseBool(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseBool(%q): got (%v,%v), want (%v,%v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestComponentReturnsEnabledLogger(t *testing.T) {
	log := Component("test-component")
	if log.GetLevel() == zerolog.Disabled {
		t.Skip("logging disabled by environment override")
	}
}
