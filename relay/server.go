// Package relay implements the untrusted relay the spec treats as an
// external collaborator (spec §6): a prekey bundle store, a message
// queue for initial handshakes, and a live WebSocket bridge for
// already-established sessions. None of it sees plaintext or ratchet
// state — everything it stores or forwards is either public key material
// or an opaque ciphertext envelope.
package relay

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"minimal-signal/wire"
)

// Server wires the bundle store, message queue, and live bridge behind an
// HTTP router.
type Server struct {
	ctx       context.Context
	cancelCtx context.CancelFunc

	store  *Store
	queue  *Queue
	bridge *Bridge
	logger *logrus.Logger
}

func NewServer(ctx context.Context, redisClient *redis.Client, logger *logrus.Logger) *Server {
	ctx, cancel := context.WithCancel(ctx)
	return &Server{
		ctx:       ctx,
		cancelCtx: cancel,
		store:     NewStore(redisClient, logger),
		queue:     NewQueue(redisClient),
		bridge:    NewBridge(logger),
		logger:    logger,
	}
}

func (s *Server) Close() { s.cancelCtx() }

// Router builds the relay's HTTP handler: bundle store, message queue,
// live bridge, and a Prometheus scrape endpoint, wrapped in permissive
// CORS for browser-based clients and a request-metrics middleware.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/bundle/{identity}", s.handlePutBundle).Methods(http.MethodPut)
	r.HandleFunc("/bundle/{identity}", s.handleGetBundle).Methods(http.MethodGet)
	r.HandleFunc("/message", s.handlePostMessage).Methods(http.MethodPost)
	r.HandleFunc("/message/{sid}", s.handleGetMessage).Methods(http.MethodGet)
	r.HandleFunc("/message/pending/{identity}", s.handleListPending).Methods(http.MethodGet)
	r.HandleFunc("/bridge/{sid}", s.handleBridge)
	r.Handle("/metrics", MetricsHandler())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return metricsMiddleware(corsHandler.Handler(r))
}

func (s *Server) handlePutBundle(w http.ResponseWriter, r *http.Request) {
	identity := mux.Vars(r)["identity"]

	var b wire.Bundle
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, "invalid bundle", http.StatusBadRequest)
		return
	}

	if err := s.store.PutBundle(r.Context(), identity, b); err != nil {
		if err == ErrIdenticalSignature {
			http.Error(w, "Cannot publish bundle with same signature", http.StatusBadRequest)
			return
		}
		s.logger.Errorf("relay: put bundle for %s: %v", identity, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleGetBundle(w http.ResponseWriter, r *http.Request) {
	identity := mux.Vars(r)["identity"]

	bundle, err := s.store.FetchBundle(r.Context(), identity)
	switch err {
	case nil:
		writeJSON(w, http.StatusOK, bundle)
	case ErrNoBundle:
		http.Error(w, "not found", http.StatusNotFound)
	case ErrNoOneTimePrekey:
		http.Error(w, "No more oneTimeKeys", http.StatusServiceUnavailable)
	default:
		s.logger.Errorf("relay: get bundle for %s: %v", identity, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var msg wire.InitialMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid message", http.StatusBadRequest)
		return
	}

	sid, err := s.queue.PostMessage(r.Context(), msg)
	if err != nil {
		s.logger.Errorf("relay: post message: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		SessionID uuid.UUID `json:"session_id"`
	}{sid})
}

func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	sid, err := uuid.Parse(mux.Vars(r)["sid"])
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	msg, err := s.queue.GetMessage(r.Context(), sid)
	switch err {
	case nil:
		writeJSON(w, http.StatusOK, msg)
	case ErrNoMessage:
		http.Error(w, "not found", http.StatusNotFound)
	default:
		s.logger.Errorf("relay: get message %s: %v", sid, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	identity := mux.Vars(r)["identity"]

	sids, err := s.queue.ListPending(r.Context(), identity)
	if err != nil {
		s.logger.Errorf("relay: list pending for %s: %v", identity, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sids)
}

func (s *Server) handleBridge(w http.ResponseWriter, r *http.Request) {
	sid := mux.Vars(r)["sid"]
	s.bridge.Join(w, r, sid)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
