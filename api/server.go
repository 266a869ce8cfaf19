package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/supplyline/resolve/internal/alias"
	"github.com/supplyline/resolve/internal/catalog"
	"github.com/supplyline/resolve/internal/config"
	"github.com/supplyline/resolve/internal/match"
	"github.com/supplyline/resolve/internal/resolver"
)

// Time format constant
const timeFormat = time.RFC3339

// DefaultNamespace is the alias namespace used when a request names none.
const DefaultNamespace = "deliveries"

// timeNow returns the current time
var timeNow = time.Now

var namespacePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ResolveRequest asks the server to resolve one raw counterparty name.
type ResolveRequest struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// AliasRequest registers one learned alias mapping.
type AliasRequest struct {
	Name      string `json:"name"`
	Entity    string `json:"entity"`
	Namespace string `json:"namespace,omitempty"`
}

// Server exposes resolution and alias management over HTTP. Resolution is
// classification only: the server never prompts, so unresolved names come
// back as needs_review with their candidates.
type Server struct {
	router     *mux.Router
	config     *config.Config
	catalog    *catalog.Store
	logger     *slog.Logger
	httpServer *http.Server

	mu     sync.Mutex
	stores map[string]*alias.Store
}

// NewServer creates an API server over the given catalog.
func NewServer(cfg *config.Config, cat *catalog.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:  mux.NewRouter(),
		config:  cfg,
		catalog: cat,
		logger:  logger,
		stores:  make(map[string]*alias.Store),
	}
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// Resolution endpoint
	s.router.HandleFunc("/resolve", s.handleResolve).Methods(http.MethodPost)

	// Alias endpoints
	s.router.HandleFunc("/aliases", s.handleListAliases).Methods(http.MethodGet)
	s.router.HandleFunc("/aliases", s.handleAddAlias).Methods(http.MethodPost)
	s.router.HandleFunc("/aliases/{name}", s.handleRemoveAlias).Methods(http.MethodDelete)

	// Supplier endpoints
	s.router.HandleFunc("/suppliers/count", s.handleSupplierCount).Methods(http.MethodGet)
}

// ServeHTTP makes the server usable directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start starts the API server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.API.Host, s.config.API.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.API.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.config.API.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.config.API.IdleTimeoutSecs) * time.Second,
	}

	s.logger.Info("starting API server", "host", s.config.API.Host, "port", s.config.API.Port)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the API server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// store returns the alias store for namespace, opening it on first use.
func (s *Server) store(namespace string) (*alias.Store, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if !namespacePattern.MatchString(namespace) {
		return nil, fmt.Errorf("invalid namespace %q", namespace)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if store, ok := s.stores[namespace]; ok {
		return store, nil
	}

	store, err := alias.Open(s.config.Aliases.Dir, namespace)
	if err != nil {
		return nil, err
	}
	s.stores[namespace] = store
	return store, nil
}

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.catalog.CountSuppliers(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Catalog health check failed: "+err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"suppliers": count,
		"timestamp": timeNow().Format(timeFormat),
	})
}

// handleResolve handles POST /resolve
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var request ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if request.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Name is required")
		return
	}

	store, err := s.store(request.Namespace)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	names, err := s.catalog.Names(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load supplier catalog: "+err.Error())
		return
	}

	cfg := resolver.Config{
		AutoAcceptThreshold: s.config.Matching.AutoAcceptThreshold,
		CandidateLimit:      request.Limit,
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = s.config.Matching.CandidateLimit
	}

	res := resolver.New(cfg, store, names, resolver.SilentChooser{}, s.logger)
	outcome, err := res.Classify(request.Name)
	if errors.Is(err, match.ErrEmptyCatalog) {
		// A server misconfiguration, not a fault in the request
		respondWithError(w, http.StatusInternalServerError, "Failed to resolve name: "+err.Error())
		return
	}
	if err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, "Failed to resolve name: "+err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, outcome)
}

// handleListAliases handles GET /aliases
func (s *Server) handleListAliases(w http.ResponseWriter, r *http.Request) {
	store, err := s.store(r.URL.Query().Get("namespace"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	aliases := store.All()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"aliases": aliases,
		"count":   len(aliases),
	})
}

// handleAddAlias handles POST /aliases
func (s *Server) handleAddAlias(w http.ResponseWriter, r *http.Request) {
	var request AliasRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if request.Name == "" || request.Entity == "" {
		respondWithError(w, http.StatusBadRequest, "Name and entity are required")
		return
	}

	// Aliases may only point at registered suppliers
	if _, err := s.catalog.SupplierByName(r.Context(), request.Entity); err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	store, err := s.store(request.Namespace)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.Add(request.Name, request.Entity); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to persist alias: "+err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{
		"status": "added",
		"name":   request.Name,
		"entity": request.Entity,
	})
}

// handleRemoveAlias handles DELETE /aliases/{name}
func (s *Server) handleRemoveAlias(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]

	store, err := s.store(r.URL.Query().Get("namespace"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	removed, err := store.Remove(name)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to remove alias: "+err.Error())
		return
	}
	if !removed {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("No alias registered for %q", name))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "removed", "name": name})
}

// handleSupplierCount handles GET /suppliers/count
func (s *Server) handleSupplierCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.catalog.CountSuppliers(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to count suppliers: "+err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"count": count})
}

// Response helpers

// respondWithError responds with an error
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON responds with JSON
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
