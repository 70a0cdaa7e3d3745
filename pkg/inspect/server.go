package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/fiber/pkg/fiber"
)

const (
	// DefaultHistory is the number of commit records kept per root.
	DefaultHistory = 64

	writeWait = 5 * time.Second
)

// MessageType identifies a stream message.
type MessageType string

const (
	MessageSnapshot MessageType = "snapshot"
	MessageCommit   MessageType = "commit"
	MessageRemoved  MessageType = "removed"
)

// StreamMessage is sent to stream clients as JSON text frames.
type StreamMessage struct {
	Type     MessageType         `json:"type"`
	RootID   string              `json:"rootId"`
	Commit   *fiber.CommitRecord `json:"commit,omitempty"`
	Snapshot json.RawMessage     `json:"snapshot,omitempty"`
}

// RootSummary is one entry of GET /roots.
type RootSummary struct {
	ID         string              `json:"id"`
	Commits    int                 `json:"commits"`
	UpdatedAt  time.Time           `json:"updatedAt"`
	LastCommit *fiber.CommitRecord `json:"lastCommit,omitempty"`
}

type rootState struct {
	snapshot []byte
	etag     string
	commits  int
	records  []fiber.CommitRecord
	updated  time.Time
	clients  map[*websocket.Conn]bool
}

// Server keeps the latest snapshot of every observed root and serves them
// over HTTP. Snapshots are taken by the commit observer on the goroutine
// driving the reconciler; handlers only read the stored copies.
type Server struct {
	mu       sync.RWMutex
	roots    map[string]*rootState
	upgrader websocket.Upgrader
	gatherer prometheus.Gatherer
	history  int
	logger   *slog.Logger
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer serves metrics from g on /metrics. Defaults to the global
// Prometheus registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithHistory sets how many commit records are kept per root.
func WithHistory(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.history = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an inspector server.
func New(opts ...Option) *Server {
	s := &Server{
		roots:    make(map[string]*rootState),
		gatherer: prometheus.DefaultGatherer,
		history:  DefaultHistory,
		logger:   slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local debugging tool
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "inspect")
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/roots", s.handleRoots)
	r.Route("/roots/{id}", func(r chi.Router) {
		r.Get("/", s.handleSnapshot)
		r.Get("/commits", s.handleCommits)
		r.Get("/stream", s.handleStream)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Observer returns a commit observer to register with
// fiber.WithCommitObserver. The commit that unmounts a root removes it.
func (s *Server) Observer() fiber.CommitObserver {
	return func(root *fiber.FiberRootNode, rec fiber.CommitRecord) {
		if root.Unmounted() {
			s.Remove(root.ID)
			return
		}
		s.Record(root.Snapshot(), rec)
	}
}

// Record stores snap as the latest snapshot of its root and pushes rec to
// the root's stream clients.
func (s *Server) Record(snap *fiber.Snapshot, rec fiber.CommitRecord) {
	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Warn("snapshot encoding failed", "root", snap.RootID, "error", err)
		return
	}

	s.mu.Lock()
	st, ok := s.roots[snap.RootID]
	if !ok {
		st = &rootState{clients: make(map[*websocket.Conn]bool)}
		s.roots[snap.RootID] = st
	}
	st.snapshot = data
	st.etag = etagOf(data)
	st.commits++
	st.updated = rec.CommittedAt
	st.records = append(st.records, rec)
	if over := len(st.records) - s.history; over > 0 {
		st.records = append(st.records[:0:0], st.records[over:]...)
	}
	clients := clientList(st)
	s.mu.Unlock()

	s.broadcast(snap.RootID, clients, StreamMessage{Type: MessageCommit, RootID: snap.RootID, Commit: &rec})
}

// Remove forgets a root and disconnects its stream clients.
func (s *Server) Remove(rootID string) {
	s.mu.Lock()
	st, ok := s.roots[rootID]
	delete(s.roots, rootID)
	s.mu.Unlock()
	if !ok {
		return
	}

	data, _ := json.Marshal(StreamMessage{Type: MessageRemoved, RootID: rootID})
	for _, conn := range clientList(st) {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.TextMessage, data)
		conn.Close()
	}
}

// ClientCount returns the number of stream clients of a root.
func (s *Server) ClientCount(rootID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.roots[rootID]; ok {
		return len(st.clients)
	}
	return 0
}

// Close disconnects all stream clients.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.roots {
		for client := range st.clients {
			client.Close()
			delete(st.clients, client)
		}
	}
}

func (s *Server) handleRoots(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	out := make([]RootSummary, 0, len(s.roots))
	for id, st := range s.roots {
		summary := RootSummary{ID: id, Commits: st.commits, UpdatedAt: st.updated}
		if n := len(st.records); n > 0 {
			last := st.records[n-1]
			summary.LastCommit = &last
		}
		out = append(out, summary)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	st, ok := s.roots[id]
	var data []byte
	var etag string
	if ok {
		data, etag = st.snapshot, st.etag
	}
	s.mu.RUnlock()

	if !ok {
		http.Error(w, "root not found", http.StatusNotFound)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleCommits(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	st, ok := s.roots[id]
	var records []fiber.CommitRecord
	if ok {
		records = append(records, st.records...)
	}
	s.mu.RUnlock()

	if !ok {
		http.Error(w, "root not found", http.StatusNotFound)
		return
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit >= 0 && limit < len(records) {
		records = records[len(records)-limit:]
	}
	writeJSON(w, http.StatusOK, records)
}

// handleStream upgrades to a websocket that first receives the current
// snapshot, then one message per commit.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	_, ok := s.roots[id]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "root not found", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	st, ok := s.roots[id]
	if !ok {
		s.mu.Unlock()
		conn.Close()
		return
	}
	st.clients[conn] = true
	hello, _ := json.Marshal(StreamMessage{Type: MessageSnapshot, RootID: id, Snapshot: st.snapshot})
	// Written under the lock so that no commit message can overtake it.
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	err = conn.WriteMessage(websocket.TextMessage, hello)
	s.mu.Unlock()
	if err != nil {
		s.dropClient(id, conn)
		return
	}

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.dropClient(id, conn)
}

func (s *Server) dropClient(rootID string, conn *websocket.Conn) {
	s.mu.Lock()
	if st, ok := s.roots[rootID]; ok {
		delete(st.clients, conn)
	}
	s.mu.Unlock()
	conn.Close()
}

func (s *Server) broadcast(rootID string, clients []*websocket.Conn, msg StreamMessage) {
	if len(clients) == 0 {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	for _, client := range clients {
		client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.Debug("stream client dropped", "root", rootID, "error", err)
			s.dropClient(rootID, client)
		}
	}
}

func clientList(st *rootState) []*websocket.Conn {
	clients := make([]*websocket.Conn, 0, len(st.clients))
	for client := range st.clients {
		clients = append(clients, client)
	}
	return clients
}

func etagOf(data []byte) string {
	return `"` + strconv.FormatUint(xxhash.Sum64(data), 16) + `"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
