// Package rpcserver hosts a JSON-RPC 2.0 endpoint over WebSocket,
// dispatching to a merged table of method modules.
package rpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/meshpin/node/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Request is one JSON-RPC 2.0 call.
type Request struct {
	ID     any             `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// Response is one JSON-RPC 2.0 reply.
type Response struct {
	ID     any       `json:"id"`
	Result any       `json:"result,omitempty"`
	Error  *RPCError `json:"error,omitempty"`
}

// Server hosts the WebSocket listener and dispatch table.
type Server struct {
	addr    string
	table   map[string]MethodFunc
	log     *zap.Logger
	metrics *metrics.Registry

	mu       sync.Mutex
	listener net.Listener
	stopped  chan struct{}
}

// New builds a Server from modules. Modules declaring overlapping method
// names return a fatal *RegisterMethodError. reg may be nil, in which case
// request metrics are simply not recorded.
func New(addr string, modules []Module, log *zap.Logger, reg *metrics.Registry) (*Server, error) {
	table, err := merge(modules)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{addr: addr, table: table, log: log, metrics: reg, stopped: make(chan struct{})}, nil
}

// ListenAndServe binds addr and serves until Stop is called or the
// listener errors. It blocks the calling goroutine.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	srv := &http.Server{Handler: http.HandlerFunc(s.handleUpgrade)}
	err = srv.Serve(ln)
	close(s.stopped)
	if err != nil && isClosedErr(err) {
		return nil
	}
	return err
}

// Stopped returns a channel closed once the listener has terminated.
func (s *Server) Stopped() <-chan struct{} {
	return s.stopped
}

// Stop closes the listener, aborting in-flight Accept calls.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("rpcserver: websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		resp := s.dispatch(ctx, data)
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, data []byte) Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Response{Error: genericError(err)}
	}

	fn, ok := s.table[req.Method]
	if !ok {
		s.observe(req.Method, 0, "not_found")
		return Response{ID: req.ID, Error: methodNotFoundError(req.Method)}
	}

	start := time.Now()
	result, err := fn(ctx, req.Params)
	if err != nil {
		s.observe(req.Method, time.Since(start), "error")
		return Response{ID: req.ID, Error: genericError(err)}
	}
	s.observe(req.Method, time.Since(start), "success")
	return Response{ID: req.ID, Result: result}
}

func (s *Server) observe(method string, d time.Duration, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.RPCRequestsTotal.WithLabelValues(method, outcome).Inc()
	if outcome != "not_found" {
		s.metrics.RPCRequestDurationSeconds.WithLabelValues(method).Observe(d.Seconds())
	}
}

func isClosedErr(err error) bool {
	return errors.Is(err, http.ErrServerClosed) || errors.Is(err, net.ErrClosed)
}
