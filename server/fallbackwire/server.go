package fallbackwire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/tuannm99/fallbackdb/internal/engine"
)

// Server exposes one shared Store over TCP. Each connection gets its own
// engine.Conn; requests on a connection are handled in order.
type Server struct {
	Store  *engine.Store
	Logger *slog.Logger
	// IdleTimeout closes connections that send nothing for this long.
	// Zero keeps them open.
	IdleTimeout time.Duration
}

func NewServer(store *engine.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{Store: store, Logger: logger}
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then closes ln and
// every open connection and waits for their handlers to return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer func() { _ = ln.Close() }()

	s.Logger.InfoContext(ctx, "fallbackdb tcp server listening", "addr", ln.Addr().String(), "dir", s.Store.Dir())

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	var wg conc.WaitGroup
	defer wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.Logger.WarnContext(ctx, "accept", "err", err)
			continue
		}
		wg.Go(func() { s.handleConn(ctx, conn) })
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	session, err := s.Store.Connect(ctx)
	if err != nil {
		s.Logger.WarnContext(ctx, "session refused", "remote", conn.RemoteAddr().String(), "err", err)
		return
	}
	defer session.Release()

	log := s.Logger.With("conn", session.ID, "remote", conn.RemoteAddr().String())
	log.DebugContext(ctx, "client connected")

	for {
		if s.IdleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.IdleTimeout))
		}

		var req ExecuteRequest
		if err := ReadFrame(conn, &req); err != nil {
			var fe *FrameError
			switch {
			case errors.As(err, &fe) && fe.Consumed:
				// stream is still aligned; answer and keep the session
				log.WarnContext(ctx, "malformed request", "size", fe.Size, "err", fe.Err)
				if werr := WriteFrame(conn, ExecuteResponse{Error: ErrServiceUnavailable}); werr != nil {
					return
				}
				continue
			case errors.As(err, &fe):
				log.WarnContext(ctx, "unusable frame, closing", "reason", fe.Reason, "size", fe.Size)
			case !errors.Is(err, io.EOF) && ctx.Err() == nil:
				log.DebugContext(ctx, "read frame", "err", err)
			}
			return
		}

		params := make([]any, len(req.Params))
		for i, p := range req.Params {
			params[i] = p
		}

		resp := ExecuteResponse{ID: req.ID}
		res, err := session.Query(ctx, req.SQL, params...)
		resp.Result = res
		if err != nil {
			// details stay in the server log
			log.WarnContext(ctx, "request failed", "id", req.ID, "err", err)
			resp.Error = ErrServiceUnavailable
		}

		if err := WriteFrame(conn, resp); err != nil {
			log.DebugContext(ctx, "write frame", "err", err)
			return
		}
	}
}
