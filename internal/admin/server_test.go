package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"airdarwin-gcs/internal/command"
	"airdarwin-gcs/internal/console"
	"airdarwin-gcs/internal/link"
	"airdarwin-gcs/internal/safety"
	"airdarwin-gcs/internal/station"
	"airdarwin-gcs/internal/telemetry"
)

type fakeStation struct {
	device     string
	connectErr error
	sendErr    error
	sent       []string
	state      telemetry.FlightState
	report     safety.Report
}

func (f *fakeStation) Connect(_ context.Context, device string) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.device = device
	return nil
}

func (f *fakeStation) Disconnect(context.Context) error {
	f.device = ""
	return nil
}

func (f *fakeStation) SendCommand(_ context.Context, name string) error {
	if _, ok := command.Lookup(name); !ok {
		return command.ErrUnknownCommand
	}
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, name)
	return nil
}

func (f *fakeStation) Link() station.LinkInfo {
	if f.device == "" {
		return station.LinkInfo{Status: link.StatusDisconnected}
	}
	return station.LinkInfo{Status: link.StatusConnected, Device: f.device}
}

func (f *fakeStation) State() telemetry.FlightState { return f.state }
func (f *fakeStation) Report() safety.Report        { return f.report }

type fixedAsker string

func (a fixedAsker) Ask(context.Context, string) string { return string(a) }

func newTestServer(st *fakeStation) *Server {
	con := console.New(st, fixedAsker("42"), "/dev/ttyUSB0")
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics\n"))
	})
	return NewServer(st, con, fixedAsker("42"), metrics)
}

func do(s *Server, method, target string) *http.Response {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w.Result()
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestHandleIndex(t *testing.T) {
	st := &fakeStation{state: telemetry.FlightState{Mode: telemetry.ModeCruise}}
	resp := do(newTestServer(st), http.MethodGet, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status OK, got %v", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "CRUISE") || !strings.Contains(string(body), "motor_on") {
		t.Errorf("index missing mode or commands")
	}
}

func TestHandleState(t *testing.T) {
	st := &fakeStation{state: telemetry.FlightState{Mode: telemetry.ModeCruise, Altitude: 120}}
	resp := do(newTestServer(st), http.MethodGet, "/api/state")
	var got telemetry.FlightState
	decode(t, resp, &got)
	if got.Mode != telemetry.ModeCruise || got.Altitude != 120 {
		t.Errorf("unexpected state %+v", got)
	}
}

func TestHandleAlerts(t *testing.T) {
	st := &fakeStation{report: safety.Report{Critical: []string{safety.NoTelemetryAlert}}}
	resp := do(newTestServer(st), http.MethodGet, "/api/alerts")
	var got safety.Report
	decode(t, resp, &got)
	if len(got.Critical) != 1 || got.Critical[0] != safety.NoTelemetryAlert {
		t.Errorf("unexpected report %+v", got)
	}
}

func TestHandleCommands(t *testing.T) {
	resp := do(newTestServer(&fakeStation{}), http.MethodGet, "/api/commands")
	var got []command.Command
	decode(t, resp, &got)
	if len(got) != len(command.Vocabulary()) {
		t.Errorf("Expected %d commands, got %d", len(command.Vocabulary()), len(got))
	}
}

func TestHandleConnect(t *testing.T) {
	st := &fakeStation{}
	s := newTestServer(st)

	if resp := do(s, http.MethodPost, "/api/connect"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing device: got %v", resp.StatusCode)
	}

	resp := do(s, http.MethodPost, "/api/connect?device=/dev/ttyACM0")
	var info station.LinkInfo
	decode(t, resp, &info)
	if info.Status != link.StatusConnected || info.Device != "/dev/ttyACM0" {
		t.Errorf("unexpected link %+v", info)
	}

	resp = do(s, http.MethodPost, "/api/disconnect")
	decode(t, resp, &info)
	if info.Status != link.StatusDisconnected {
		t.Errorf("Expected disconnected, got %v", info.Status)
	}

	st.connectErr = errors.New("no such device")
	if resp := do(s, http.MethodPost, "/api/connect?device=/dev/null"); resp.StatusCode != http.StatusBadGateway {
		t.Errorf("failed connect: got %v", resp.StatusCode)
	}
}

func TestHandleCommand(t *testing.T) {
	st := &fakeStation{}
	s := newTestServer(st)

	resp := do(s, http.MethodPost, "/api/command?name=takeoff_start")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status OK, got %v", resp.StatusCode)
	}
	if len(st.sent) != 1 || st.sent[0] != "takeoff_start" {
		t.Errorf("unexpected sent %v", st.sent)
	}

	if resp := do(s, http.MethodPost, "/api/command?name=barrel_roll"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown command: got %v", resp.StatusCode)
	}

	st.sendErr = command.ErrLinkDown
	if resp := do(s, http.MethodPost, "/api/command?name=reset"); resp.StatusCode != http.StatusConflict {
		t.Errorf("link down: got %v", resp.StatusCode)
	}

	st.sendErr = &link.WriteError{Command: "reset", Err: errors.New("broken pipe")}
	if resp := do(s, http.MethodPost, "/api/command?name=reset"); resp.StatusCode != http.StatusBadGateway {
		t.Errorf("write error: got %v", resp.StatusCode)
	}
}

func TestHandleCommandRejectsGet(t *testing.T) {
	resp := do(newTestServer(&fakeStation{}), http.MethodGet, "/api/command?name=reset")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %v", resp.StatusCode)
	}
}

func TestHandleAskAndConsole(t *testing.T) {
	s := newTestServer(&fakeStation{})

	var ans map[string]string
	decode(t, do(s, http.MethodPost, "/api/ask?q=stall+speed"), &ans)
	if ans["answer"] != "42" {
		t.Errorf("unexpected answer %v", ans)
	}
	if resp := do(s, http.MethodPost, "/api/ask"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty question: got %v", resp.StatusCode)
	}

	var reply map[string]string
	decode(t, do(s, http.MethodPost, "/api/console?input=motor_on"), &reply)
	if reply["reply"] != "Command 'motor_on' sent to AirDarwin autopilot" {
		t.Errorf("unexpected reply %q", reply["reply"])
	}
}

func TestAskWithoutAssistant(t *testing.T) {
	st := &fakeStation{}
	s := NewServer(st, nil, nil, nil)
	if resp := do(s, http.MethodPost, "/api/ask?q=why"); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %v", resp.StatusCode)
	}
	if resp := do(s, http.MethodGet, "/metrics"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("metrics without handler: got %v", resp.StatusCode)
	}
}

func TestMetricsRoute(t *testing.T) {
	resp := do(newTestServer(&fakeStation{}), http.MethodGet, "/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status OK, got %v", resp.StatusCode)
	}
}
