package devtools

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/reactor/pkg/reactor"
)

// Config configures the devtools server.
type Config struct {
	// Logger is the structured logger. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer

	// CheckOrigin validates websocket origins. If nil, the gorilla default
	// (same origin) applies.
	CheckOrigin func(r *http.Request) bool

	// ReadBufferSize and WriteBufferSize size the websocket buffers.
	// Default: 1024 each.
	ReadBufferSize  int
	WriteBufferSize int

	// SendBuffer is the number of events queued per websocket client before
	// the client is dropped. Default: 64.
	SendBuffer int

	// RequestLogging enables chi's request logger.
	RequestLogging bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBuffer:      64,
	}
}

// Server exposes an engine over HTTP: state and getter inspection, mutation
// dispatch, a websocket stream of mutation events, and metrics.
//
// The engine is single-threaded, so every access from HTTP handlers is
// serialized by the server's lock. Code outside the server that touches the
// same engine must go through Do.
type Server struct {
	mu     sync.Mutex
	engine *reactor.Engine
	last   reactor.MutationEvent
	off    func()

	hub      *hub
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// New creates a devtools server for engine and subscribes to its mutation
// events. Call Close to unsubscribe and disconnect event clients.
func New(engine *reactor.Engine, config Config) *Server {
	defaults := DefaultConfig()
	if config.ReadBufferSize <= 0 {
		config.ReadBufferSize = defaults.ReadBufferSize
	}
	if config.WriteBufferSize <= 0 {
		config.WriteBufferSize = defaults.WriteBufferSize
	}
	if config.SendBuffer <= 0 {
		config.SendBuffer = defaults.SendBuffer
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		engine: engine,
		hub:    newHub(config.SendBuffer, logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: logger,
	}

	s.mu.Lock()
	s.off = engine.On(reactor.EventMutation, s.onMutation)
	s.mu.Unlock()

	s.router = s.routes(config)
	return s
}

// Handler returns the HTTP handler for mounting in a router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Do runs fn with exclusive access to the engine.
func (s *Server) Do(fn func(e *reactor.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.engine)
}

// Close unsubscribes from the engine and disconnects all event clients.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.off != nil {
		s.off()
		s.off = nil
	}
	s.mu.Unlock()
	s.hub.close()
	return nil
}

func (s *Server) routes(config Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if config.RequestLogging {
		r.Use(middleware.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/state", s.handleState)
	r.Get("/getters", s.handleGetters)
	r.Get("/getters/{name}", s.handleGetter)
	r.Get("/mutations", s.handleMutations)
	r.Post("/mutations/{name}", s.handleCommit)
	r.Get("/events", s.handleEvents)
	if config.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// onMutation runs under s.mu, since mutations are only committed through Do
// or the HTTP handlers.
func (s *Server) onMutation(ev reactor.MutationEvent) {
	s.last = ev
	msg, err := json.Marshal(ev)
	if err != nil {
		s.logger.Warn("devtools: cannot encode mutation event", "mutation", ev.Name, "err", err)
		return
	}
	s.hub.broadcast(msg)
}
