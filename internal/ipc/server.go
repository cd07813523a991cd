package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"filterbridge/internal/config"
	"filterbridge/internal/dispatch"
	"filterbridge/internal/logging"
	"filterbridge/internal/notifier"
)

const shutdownTimeout = 5 * time.Second

// Server accepts UI windows on a Unix domain socket.
type Server struct {
	path         string
	dispatcher   *dispatch.Dispatcher
	hub          *notifier.Hub
	logger       *slog.Logger
	listener     net.Listener
	httpSrv      *http.Server
	maxMessage   int64
	writeTimeout time.Duration

	statusMu sync.RWMutex
	status   StatusFunc

	sessionsMu sync.Mutex
	sessions   map[string]*Session

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewServer listens on the configured socket path. Serve must be called to
// start accepting windows.
func NewServer(ctx context.Context, cfg *config.Config, d *dispatch.Dispatcher, hub *notifier.Hub, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("ipc server requires config")
	}
	if d == nil {
		return nil, errors.New("ipc server requires dispatcher")
	}
	if hub == nil {
		return nil, errors.New("ipc server requires notifier hub")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	path := cfg.Paths.SocketPath
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	s := &Server{
		path:         path,
		dispatcher:   d,
		hub:          hub,
		logger:       logging.NewComponentLogger(logger, "ipc"),
		listener:     listener,
		maxMessage:   cfg.UI.MaxMessageBytes,
		writeTimeout: cfg.WriteTimeout(),
		sessions:     make(map[string]*Session),
		ctx:          serverCtx,
		cancel:       cancel,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+RouteUI, s.handleUI)
	mux.HandleFunc("GET "+RouteStatus, s.handleStatus)
	s.httpSrv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return serverCtx },
	}
	return s, nil
}

// SetStatusFunc installs the provider behind GET /status.
func (s *Server) SetStatusFunc(fn StatusFunc) {
	s.statusMu.Lock()
	s.status = fn
	s.statusMu.Unlock()
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// Serve starts accepting connections in the background until Close.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpSrv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "IPC server stopped", "ipc.serve_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "UI windows can no longer connect"),
				logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon"),
			)
		}
	}()
}

// Windows reports the number of connected windows.
func (s *Server) Windows() int {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	return len(s.sessions)
}

// Close disconnects every window, stops the server and removes the socket
// file. It waits for in-flight asynchronous replies.
func (s *Server) Close() {
	s.once.Do(func() {
		s.cancel()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			s.logger.Debug("http shutdown incomplete", logging.Error(err))
		}
		s.sessionsMu.Lock()
		for _, sess := range s.sessions {
			sess.close()
		}
		s.sessionsMu.Unlock()
		s.wg.Wait()
		s.dispatcher.Wait()

		if err := os.RemoveAll(s.path); err != nil {
			logging.WarnWithContext(s.logger, "failed to remove socket", "ipc.socket_cleanup_failed",
				logging.String("socket", s.path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
				logging.String(logging.FieldErrorHint, "remove the socket file manually"),
			)
		}
	})
}

func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	s.wg.Add(1)
	defer s.wg.Done()

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logging.WarnWithContext(s.logger, "websocket upgrade failed", "ipc.upgrade_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "window not connected"),
			logging.String(logging.FieldErrorHint, "connect with a websocket client to "+RouteUI),
		)
		return
	}
	if s.maxMessage > 0 {
		conn.SetReadLimit(s.maxMessage)
	}

	sess := newSession(s.ctx, uuid.NewString(), conn, s.writeTimeout, s.logger)
	if !s.track(sess) {
		sess.close()
		return
	}

	// The subscription lives exactly as long as the window.
	sub := s.hub.Subscribe(sess.relay)
	defer func() {
		sess.close()
		sub.Close()
		<-sub.Done()
		s.untrack(sess)
	}()

	sess.logger.Info("window connected", logging.String(logging.FieldEventType, "ipc.window_connected"))
	sess.serve(s.dispatcher)
	sess.logger.Info("window closed", logging.String(logging.FieldEventType, "ipc.window_closed"))
}

func (s *Server) track(sess *Session) bool {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	if s.ctx.Err() != nil {
		return false
	}
	s.sessions[sess.id] = sess
	return true
}

func (s *Server) untrack(sess *Session) {
	s.sessionsMu.Lock()
	delete(s.sessions, sess.id)
	s.sessionsMu.Unlock()
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.statusMu.RLock()
	fn := s.status
	s.statusMu.RUnlock()

	resp := StatusResponse{Running: true, PID: os.Getpid(), SocketPath: s.path, Windows: s.Windows()}
	if fn != nil {
		resp = fn()
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Debug("write status response", logging.Error(err))
	}
}
