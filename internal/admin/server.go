// Package admin serves the HTTP operator surface: flight state, safety
// report, link control, uplink commands, the assistant and metrics.
package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net"
	"net/http"
	"time"

	"airdarwin-gcs/internal/command"
	"airdarwin-gcs/internal/console"
	"airdarwin-gcs/internal/logging"
	"airdarwin-gcs/internal/safety"
)

// Station is the pipeline surface the server exposes.
type Station interface {
	console.Controller
	Report() safety.Report
}

type Server struct {
	station Station
	console *console.Console
	asker   console.Asker
	metrics http.Handler
	tpl     *template.Template
	mux     *http.ServeMux
}

//go:embed templates/index.html
var content embed.FS

// NewServer wires the routes. asker and metrics may be nil.
func NewServer(st Station, con *console.Console, asker console.Asker, metrics http.Handler) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	s := &Server{station: st, console: con, asker: asker, metrics: metrics, tpl: tpl, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("GET /api/alerts", s.handleAlerts)
	s.mux.HandleFunc("GET /api/link", s.handleLink)
	s.mux.HandleFunc("GET /api/commands", s.handleCommands)
	s.mux.HandleFunc("POST /api/connect", s.handleConnect)
	s.mux.HandleFunc("POST /api/disconnect", s.handleDisconnect)
	s.mux.HandleFunc("POST /api/command", s.handleCommand)
	s.mux.HandleFunc("POST /api/ask", s.handleAsk)
	s.mux.HandleFunc("POST /api/console", s.handleConsole)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}
}

// ServeHTTP makes the server usable as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Start listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	log := logging.FromContext(ctx)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("admin server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	log.Info("stopping admin server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		State    any
		Report   safety.Report
		Link     any
		Commands []command.Command
	}{
		State:    s.station.State(),
		Report:   s.station.Report(),
		Link:     s.station.Link(),
		Commands: command.Vocabulary(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		logging.FromContext(r.Context()).Error("render index", "err", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.station.State())
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.station.Report())
}

func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.station.Link())
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, command.Vocabulary())
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	device := r.FormValue("device")
	if device == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing device"))
		return
	}
	if err := s.station.Connect(r.Context(), device); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, s.station.Link())
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.station.Disconnect(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, s.station.Link())
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	err := s.station.SendCommand(r.Context(), name)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"sent": name})
	case errors.Is(err, command.ErrUnknownCommand):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, command.ErrLinkDown):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusBadGateway, err)
	}
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	q := r.FormValue("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing q"))
		return
	}
	if s.asker == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("assistant disabled"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": s.asker.Ask(r.Context(), q)})
}

func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	input := r.FormValue("input")
	if s.console == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("console disabled"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": s.console.Interpret(r.Context(), input)})
}
