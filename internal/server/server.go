package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/olehluchkiv/abslens/internal/index"
	"github.com/olehluchkiv/abslens/internal/lens"
)

type errorJSON struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Handler serves the navigation API for the store's current snapshot.
func Handler(store *Store, logger *slog.Logger) http.Handler {
	h := &handler{store: store, logger: logger.With("component", "server")}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/snapshot", h.snapshot)
	mux.HandleFunc("GET /api/contracts", h.contracts)
	mux.HandleFunc("GET /api/types", h.types)
	mux.HandleFunc("GET /api/implementations", h.implementations)
	mux.HandleFunc("GET /api/method-implementations", h.methodImplementations)
	mux.HandleFunc("GET /api/contracts-of", h.contractsOf)
	mux.HandleFunc("GET /api/contract-methods", h.contractMethods)
	mux.HandleFunc("GET /api/lenses", h.lenses)
	mux.HandleFunc("GET /mermaid.md", h.mermaid)
	return h.logRequests(mux)
}

type handler struct {
	store  *Store
	logger *slog.Logger
}

func (h *handler) snap() *Snapshot { return h.store.Load() }

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.logger.Debug("request received",
			"method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery, "snapshot", h.snap().ID)
		next.ServeHTTP(w, r)
	})
}

func (h *handler) snapshot(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.snap().toJSON())
}

func (h *handler) contracts(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, toContracts(h.snap().Index.Contracts()))
}

func (h *handler) types(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, toTypes(h.snap().Index.Types()))
}

func (h *handler) implementations(w http.ResponseWriter, r *http.Request) {
	contract, ok := h.params(w, r, "contract")
	if !ok {
		return
	}
	rels, err := h.snap().Index.ImplementationsOf(contract[0])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toRelations(rels))
}

func (h *handler) methodImplementations(w http.ResponseWriter, r *http.Request) {
	p, ok := h.params(w, r, "contract", "method")
	if !ok {
		return
	}
	targets, err := h.snap().Index.MethodImplementations(p[0], p[1])
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]methodTargetJSON, len(targets))
	for i, t := range targets {
		out[i] = methodTargetJSON{Type: t.Type.Key(), Method: toMethod(t.Method)}
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *handler) contractsOf(w http.ResponseWriter, r *http.Request) {
	typ, ok := h.params(w, r, "type")
	if !ok {
		return
	}
	rels, err := h.snap().Index.ContractsOf(typ[0])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toRelations(rels))
}

func (h *handler) contractMethods(w http.ResponseWriter, r *http.Request) {
	p, ok := h.params(w, r, "type", "method")
	if !ok {
		return
	}
	cms, err := h.snap().Index.ContractMethodsFor(p[0], p[1])
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]contractMethodJSON, len(cms))
	for i, cm := range cms {
		out[i] = contractMethodJSON{Contract: cm.Contract.Key(), Method: toMethod(cm.Method)}
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *handler) lenses(w http.ResponseWriter, r *http.Request) {
	lenses := h.snap().Lenses
	if file := r.URL.Query().Get("file"); file != "" {
		lenses = lens.ForFile(lenses, file)
	}
	if lenses == nil {
		lenses = []lens.Lens{}
	}
	h.writeJSON(w, http.StatusOK, lenses)
}

func (h *handler) mermaid(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(h.snap().Mermaid))
}

// params reads required query parameters, answering 400 when one is missing.
func (h *handler) params(w http.ResponseWriter, r *http.Request, names ...string) ([]string, bool) {
	q := r.URL.Query()
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = q.Get(name)
		if values[i] == "" {
			h.writeJSON(w, http.StatusBadRequest, errorJSON{Error: fmt.Sprintf("missing query parameter %q", name)})
			return nil, false
		}
	}
	return values, true
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	var nf *index.NotFoundError
	switch {
	case errors.As(err, &nf):
		h.writeJSON(w, http.StatusNotFound, errorJSON{Error: err.Error(), Suggestion: nf.Suggestion})
	case errors.Is(err, index.ErrAmbiguous):
		h.writeJSON(w, http.StatusConflict, errorJSON{Error: err.Error()})
	default:
		h.logger.Error("query failed", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, errorJSON{Error: err.Error()})
	}
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// Serve starts the HTTP server for the store.
// It blocks until the context is cancelled.
func Serve(ctx context.Context, store *Store, port int, logger *slog.Logger) error {
	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(store, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting HTTP server", "addr", fmt.Sprintf("http://localhost:%d", port), "snapshot", store.Load().ID)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
		close(errCh)
	}()

	// Block until the context is cancelled or the server fails.
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown error: %w", err)
		}
		return nil
	}
}
