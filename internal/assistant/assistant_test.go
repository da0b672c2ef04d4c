package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFallbackLookupOrder(t *testing.T) {
	tests := []struct {
		q    string
		want string
	}{
		{"What does TAKEOFF mean?", "TAKEOFF: "},
		{"what is emergency?", "EMERGENCY: Emergency mode."},
		{"is caution bad?", "CAUTION: "},
		{"what does go_around do?", "go_around: "},
		{"how is my battery?", "Battery: "},
		{"GPS fix?", "GPS: "},
		{"max airspeed?", "Speed limits"},
		{"how high is the altitude limit?", "Altitude: "},
		{"too windy?", "Wind limits"},
		{"hello", DefaultAnswer},
	}
	for _, tt := range tests {
		if got := Fallback(tt.q); !strings.HasPrefix(got, tt.want) {
			t.Fatalf("Fallback(%q) = %q, want prefix %q", tt.q, got, tt.want)
		}
	}
}

func TestAskWithoutBackend(t *testing.T) {
	a := New(nil, 0)
	if got := a.Ask(context.Background(), "battery?"); !strings.HasPrefix(got, "Battery") {
		t.Fatalf("Ask = %q", got)
	}
}

type blockingBackend struct {
	release chan struct{}
	answer  string
	err     error
}

func (b *blockingBackend) Generate(ctx context.Context, q string) (string, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return b.answer, b.err
}

func TestAskSingleInFlight(t *testing.T) {
	b := &blockingBackend{release: make(chan struct{}), answer: "  Keep 60 km/h in cruise.  "}
	a := New(b, time.Second)
	ctx := context.Background()

	if got := a.Ask(ctx, "cruise speed?"); got != Thinking {
		t.Fatalf("first Ask = %q, want %q", got, Thinking)
	}
	if got := a.Ask(ctx, "battery?"); !strings.HasPrefix(got, "Battery") {
		t.Fatalf("busy Ask = %q, want fallback", got)
	}
	close(b.release)
	select {
	case got := <-a.Answers():
		if got != "Keep 60 km/h in cruise." {
			t.Fatalf("answer = %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no answer delivered")
	}
}

func TestAskBackendErrorFallsBack(t *testing.T) {
	b := &blockingBackend{release: make(chan struct{}), err: errors.New("model offline")}
	close(b.release)
	a := New(b, time.Second)
	if got := a.Ask(context.Background(), "gps?"); got != Thinking {
		t.Fatalf("Ask = %q", got)
	}
	select {
	case got := <-a.Answers():
		if !strings.HasPrefix(got, "GPS") {
			t.Fatalf("answer = %q, want GPS fallback", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no answer delivered")
	}
}

func TestDeliverKeepsNewest(t *testing.T) {
	a := New(nil, 0)
	a.deliver("old")
	a.deliver("new")
	if got := <-a.Answers(); got != "new" {
		t.Fatalf("answer = %q, want new", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abcd" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("aé", 2); got != "a" {
		t.Fatalf("truncate split rune: %q", got)
	}
}

func TestHTTPBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "distilgpt2" || !strings.Contains(req.Prompt, "Question: wind?") || req.Stream {
			http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(generateResponse{Response: req.Prompt + " Land into the wind."})
	}))
	defer srv.Close()

	b := &HTTPBackend{Endpoint: srv.URL + "/", Model: "distilgpt2"}
	got, err := b.Generate(context.Background(), "wind?")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if strings.TrimSpace(got) != "Land into the wind." {
		t.Fatalf("answer = %q", got)
	}
}
