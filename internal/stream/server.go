package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/grasslab/mowsim/internal/core"
	"github.com/grasslab/mowsim/internal/sim"
)

// Server exposes the live stream plus snapshot endpoints:
//
//	GET /ws        WebSocket subscription to tick and cycle events
//	GET /layout    static tile-type matrix
//	GET /coverage  visit matrix summed over finished cycles
//	GET /healthz   liveness probe
//
// The server never reads live simulator state: the layout is captured before
// the run starts and coverage accumulates from the observer's cycle records,
// so the single-threaded tick loop stays the sole owner of the grid.
type Server struct {
	hub    *Hub
	log    *zap.Logger
	srv    *http.Server
	layout [][]string

	mu       sync.RWMutex
	coverage [][]int
}

// NewServer wires the hub and snapshot handlers. The grid supplies the
// static layout; per-cycle coverage arrives through the Observer methods.
func NewServer(addr string, hub *Hub, g *core.Grid, log *zap.Logger) *Server {
	types := g.TypeGrid()
	layout := make([][]string, len(types))
	coverage := make([][]int, len(types))
	for y, row := range types {
		layout[y] = make([]string, len(row))
		coverage[y] = make([]int, len(row))
		for x, t := range row {
			layout[y][x] = t.String()
		}
	}

	mux := http.NewServeMux()
	server := &Server{
		hub:      hub,
		log:      log,
		srv:      &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		layout:   layout,
		coverage: coverage,
	}
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/layout", server.handleLayout)
	mux.HandleFunc("/coverage", server.handleCoverage)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return server
}

// OnTick implements sim.Observer by forwarding to the hub.
func (s *Server) OnTick(f sim.Frame) {
	s.hub.OnTick(f)
}

// OnCycle implements sim.Observer: fold the finished cycle's snapshot into
// the served coverage, then broadcast.
func (s *Server) OnCycle(rec sim.CycleRecord) {
	s.mu.Lock()
	for y, row := range rec.Snapshot {
		for x, v := range row {
			s.coverage[y][x] += v
		}
	}
	s.mu.Unlock()
	s.hub.OnCycle(rec)
}

// Start runs the hub loop and the HTTP listener until the context ends.
func (s *Server) Start(ctx context.Context) {
	go s.hub.Run()
	go func() {
		s.log.Info("stream listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("stream server failed", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
	}()
}

func (s *Server) handleLayout(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, s.layout)
}

func (s *Server) handleCoverage(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	out := make([][]int, len(s.coverage))
	for y, row := range s.coverage {
		out[y] = append([]int(nil), row...)
	}
	s.mu.RUnlock()
	respondJSON(w, out)
}

func respondJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}
