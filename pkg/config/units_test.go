package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"250ms", 250 * time.Millisecond, false},
		{"5s", 5 * time.Second, false},
		{"2h45m", 2*time.Hour + 45*time.Minute, false},
		{"1d", 24 * time.Hour, false},
		{"1d12h", 36 * time.Hour, false},
		{"", 0, false},
		{"bogus", 0, true},
		{"5x", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDuration(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDuration(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDurationYAMLRoundTrip(t *testing.T) {
	type doc struct {
		Wait Duration `yaml:"wait"`
	}

	var d doc
	if err := yaml.Unmarshal([]byte("wait: 90s"), &d); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if d.Wait.Std() != 90*time.Second {
		t.Errorf("got %v, want 90s", d.Wait.Std())
	}

	out, err := yaml.Marshal(d)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != "wait: 1m30s\n" {
		t.Errorf("marshal = %q", out)
	}
}
