package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"golang.org/x/sync/errgroup"

	"c2c/internal/compiler"
	"c2c/internal/trace"
)

// Server accepts connections and answers requests. Requests on one
// connection are served in order; connections are served concurrently,
// each request by its own compiler instance.
type Server struct {
	Handler Handler
	Tracer  trace.Tracer

	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	closing bool
}

func NewServer(h Handler, tracer trace.Tracer) *Server {
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Server{Handler: h, Tracer: tracer, conns: make(map[net.Conn]struct{})}
}

// Serve runs until ctx ends or a client sends the shutdown command.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, shutdown := context.WithCancel(ctx)
	defer shutdown()
	s.mu.Lock()
	s.closing = false
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		ln.Close()
		s.closeConns()
		return nil
	})

	var acceptErr error
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				acceptErr = fmt.Errorf("accept: %w", err)
			}
			break
		}
		if !s.track(conn, true) {
			continue
		}
		g.Go(func() error {
			defer s.track(conn, false)
			defer conn.Close()
			s.serveConn(gctx, conn, shutdown)
			return nil
		})
	}
	shutdown()
	if err := g.Wait(); err != nil {
		return err
	}
	return acceptErr
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn, shutdown context.CancelFunc) {
	for {
		req, err := ReadRequest(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				trace.Point(s.Tracer, trace.ScopeInstance, "protocol", err.Error(), 0)
			}
			return
		}
		if req.IsShutdown() {
			trace.Point(s.Tracer, trace.ScopeInstance, "shutdown", conn.RemoteAddr().String(), 0)
			shutdown()
			return
		}
		span := trace.Begin(s.Tracer, trace.ScopeInstance, fmt.Sprintf("request:%d", req.ID), 0)
		resp := s.handle(ctx, req)
		span.WithExtra("code", fmt.Sprint(resp.Code)).End("")
		if err := WriteResponse(conn, resp); err != nil {
			return
		}
	}
}

// handle shields the server from a panicking handler; aborts never get
// here since the instance converts them.
func (s *Server) handle(ctx context.Context, req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = &Response{
				ID:     req.ID,
				Code:   compiler.CodeFailure,
				Stderr: []byte(fmt.Sprintf("c2c: internal error: %v\n", r)),
			}
		}
	}()
	return s.Handler(ctx, req)
}

// track adds or removes a live connection. A connection accepted after
// shutdown began is closed at once and track reports false.
func (s *Server) track(c net.Conn, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !add {
		delete(s.conns, c)
		return true
	}
	if s.closing {
		c.Close()
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closing = true
	for c := range s.conns {
		c.Close()
	}
}
