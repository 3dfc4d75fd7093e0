package commands

import (
	"bytes"
	"strings"
	"testing"

	"checkers/internal/client/api"
	"checkers/internal/client/display"
)

func TestParseTile(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		x, y    int
		wantErr bool
	}{
		{"square", []string{"c3"}, 2, 5, false},
		{"upper case square", []string{"H8"}, 7, 0, false},
		{"coordinates", []string{"2", "5"}, 2, 5, false},
		{"off board square", []string{"i1"}, 0, 0, true},
		{"off board coordinates", []string{"8", "0"}, 0, 0, true},
		{"no args", nil, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, err := parseTile(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (x != tt.x || y != tt.y) {
				t.Fatalf("got (%d,%d), want (%d,%d)", x, y, tt.x, tt.y)
			}
		})
	}
}

func TestParseNewArgs(t *testing.T) {
	req, err := parseNewArgs([]string{"-layout", "8/8/8/8/8/8/8/r7", "-turn", "1", "-frames", "0", "-promotion", "back-rank"})
	if err != nil {
		t.Fatal(err)
	}
	if req.Layout != "8/8/8/8/8/8/8/r7 1" || req.Promotion != "back-rank" {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.AnimationFrames == nil || *req.AnimationFrames != 0 {
		t.Fatal("explicit zero frames must be sent")
	}

	req, err = parseNewArgs(nil)
	if err != nil || req.Layout != "" || req.AnimationFrames != nil {
		t.Fatalf("defaults: %+v, %v", req, err)
	}

	if _, err := parseNewArgs([]string{"-turn", "2", "-layout", "8"}); err == nil {
		t.Fatal("invalid turn accepted")
	}
	if _, err := parseNewArgs([]string{"extra"}); err == nil {
		t.Fatal("stray argument accepted")
	}
}

func TestRegistryShortNames(t *testing.T) {
	r := NewRegistry(nil)
	for short, name := range map[string]string{"n": "new", "s": "select", "t": "to", "c": "clear", "p": "poll", "-": "cls"} {
		cmd, ok := r.Lookup(short)
		if !ok || cmd.Name != name {
			t.Errorf("short name %q resolves to %+v, want %s", short, cmd, name)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	if got := normalizeURL("localhost:8080/"); got != "http://localhost:8080" {
		t.Fatalf("got %s", got)
	}
	if got := normalizeURL("https://example.com"); got != "https://example.com" {
		t.Fatalf("got %s", got)
	}
}

func TestPrintHealth(t *testing.T) {
	display.DisableColors()

	tests := []struct {
		name   string
		health api.HealthResponse
		want   []string
	}{
		{
			"recording",
			api.HealthResponse{Status: "healthy", Games: 3, Busy: 1, Waiters: 2, Storage: "ok"},
			[]string{"Checkers server healthy", "3 live, 1 animating", "Waiters: 2", "Storage: ok"},
		},
		{
			"disabled",
			api.HealthResponse{Status: "healthy", Storage: "disabled"},
			[]string{"0 live, 0 animating", "Storage: disabled", "Moves are not recorded"},
		},
		{
			"degraded",
			api.HealthResponse{Status: "healthy", Games: 1, Storage: "degraded"},
			[]string{"Storage: degraded", "no longer recorded"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printHealth(&buf, &tt.health)
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("missing %q in:\n%s", want, buf.String())
				}
			}
		})
	}
}
