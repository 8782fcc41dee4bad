// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/logging"
)

// logLines decodes the JSON lines zerolog wrote to buf.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var lines []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var line map[string]any
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			t.Fatalf("log line is not JSON: %v (%q)", err, sc.Text())
		}
		lines = append(lines, line)
	}
	return lines
}

func findLine(lines []map[string]any, msg string) map[string]any {
	for _, l := range lines {
		if l["message"] == msg {
			return l
		}
	}
	return nil
}

func TestHTTPServerService_GracefulShutdownLogs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	server := &http.Server{
		Addr:              "127.0.0.1:0",
		Handler:           http.NotFoundHandler(),
		ReadHeaderTimeout: time.Second,
	}
	svc := NewHTTPServerService(server, 750*time.Millisecond, logging.NewTestLogger(&buf))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Serve() did not return after cancellation")
	}

	lines := logLines(t, &buf)

	listening := findLine(lines, "HTTP server listening")
	if listening == nil {
		t.Fatalf("no listen line in %v", lines)
	}
	if listening["addr"] != "127.0.0.1:0" || listening["service"] != "http-server" {
		t.Errorf("listen line = %v", listening)
	}

	stopping := findLine(lines, "HTTP server shutting down")
	if stopping == nil {
		t.Fatalf("no shutdown line in %v", lines)
	}
	if stopping["service"] != "http-server" || stopping["level"] != "info" {
		t.Errorf("shutdown line = %v", stopping)
	}
	if _, ok := stopping["timeout"]; !ok {
		t.Errorf("shutdown line has no timeout field: %v", stopping)
	}
}

func TestHTTPServerService_ListenerFailure(t *testing.T) {
	t.Parallel()

	// hold the port so the service cannot bind it
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	defer ln.Close()

	var buf bytes.Buffer
	server := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           http.NotFoundHandler(),
		ReadHeaderTimeout: time.Second,
	}
	svc := NewHTTPServerService(server, time.Second, logging.NewTestLogger(&buf))

	done := make(chan error, 1)
	go func() { done <- svc.Serve(context.Background()) }()

	select {
	case err = <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Serve() did not return on bind failure")
	}

	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("Serve() error = %v, want wrapped *net.OpError", err)
	}
	if !strings.HasPrefix(err.Error(), "http server failed:") {
		t.Errorf("Serve() error = %q, want http server failed prefix", err)
	}
	if findLine(logLines(t, &buf), "HTTP server shutting down") != nil {
		t.Error("shutdown logged although the listener never came up")
	}
}

// stubServer returns fixed results; ListenAndServe blocks until Shutdown
// when block is set.
type stubServer struct {
	listenErr   error
	shutdownErr error
	block       bool
	stop        chan struct{}
}

func (s *stubServer) ListenAndServe() error {
	if s.block {
		<-s.stop
		return http.ErrServerClosed
	}
	return s.listenErr
}

func (s *stubServer) Shutdown(context.Context) error {
	close(s.stop)
	return s.shutdownErr
}

func TestHTTPServerService_ServeResults(t *testing.T) {
	t.Parallel()

	shutdownErr := errors.New("connections still draining")

	tests := []struct {
		name    string
		server  *stubServer
		cancel  bool
		wantErr error
		wantNil bool
	}{
		{
			name:    "closed server returns nil",
			server:  &stubServer{listenErr: http.ErrServerClosed},
			wantNil: true,
		},
		{
			name:    "listener returns without error",
			server:  &stubServer{},
			wantNil: true,
		},
		{
			name:    "shutdown failure is wrapped",
			server:  &stubServer{block: true, shutdownErr: shutdownErr},
			cancel:  true,
			wantErr: shutdownErr,
		},
		{
			name:    "deadline passes through",
			server:  &stubServer{block: true},
			cancel:  true,
			wantErr: context.DeadlineExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.server.stop = make(chan struct{})
			svc := NewHTTPServerService(tt.server, 0, logging.NewTestLogger(&bytes.Buffer{}))

			ctx := context.Background()
			if tt.cancel {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, 20*time.Millisecond)
				defer cancel()
			}

			err := svc.Serve(ctx)
			switch {
			case tt.wantNil && err != nil:
				t.Errorf("Serve() error = %v, want nil", err)
			case tt.wantErr != nil && !errors.Is(err, tt.wantErr):
				t.Errorf("Serve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewHTTPServerService_Defaults(t *testing.T) {
	t.Parallel()

	for _, timeout := range []time.Duration{0, -time.Second} {
		svc := NewHTTPServerService(&stubServer{}, timeout, logging.NewTestLogger(&bytes.Buffer{}))
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("shutdownTimeout(%v) = %v, want 10s", timeout, svc.shutdownTimeout)
		}
		if svc.String() != "http-server" {
			t.Errorf("String() = %q", svc.String())
		}
	}
}
