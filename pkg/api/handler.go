package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/zarrenspry/vcd-inventory/pkg/errors"
	"github.com/zarrenspry/vcd-inventory/pkg/inventory"
	"github.com/zarrenspry/vcd-inventory/pkg/serializer"
	"github.com/zarrenspry/vcd-inventory/pkg/server"
	"github.com/zarrenspry/vcd-inventory/pkg/source"
)

// Route patterns served by Handler.
const (
	RouteInventory = "/v1/inventory"
	RouteHost      = "/v1/inventory/hosts/{name}"
)

// Handler serves the inventory over HTTP. Every request regenerates the
// inventory from its source, so a cached source keeps its TTL semantics.
type Handler struct {
	src       source.Source
	assembler *inventory.Assembler

	mu      sync.Mutex
	lastErr error
}

// NewHandler returns a Handler assembling the records of src with a.
func NewHandler(src source.Source, a *inventory.Assembler) *Handler {
	if a == nil {
		a = inventory.New()
	}
	return &Handler{src: src, assembler: a}
}

// Routes returns the handler functions keyed by route pattern.
func (h *Handler) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		RouteInventory: h.HandleInventory,
		RouteHost:      h.HandleHost,
	}
}

// HandleInventory handles GET /v1/inventory.
func (h *Handler) HandleInventory(w http.ResponseWriter, r *http.Request) {
	format, ok := h.preflight(w, r)
	if !ok {
		return
	}

	res, err := h.generate(r)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to generate inventory", nil)
		return
	}

	serializer.Respond(w, http.StatusOK, format, res)
}

// HandleHost handles GET /v1/inventory/hosts/{name}.
func (h *Handler) HandleHost(w http.ResponseWriter, r *http.Request) {
	format, ok := h.preflight(w, r)
	if !ok {
		return
	}

	name := r.PathValue("name")
	if name == "" {
		server.WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest,
			"host name is required", false, nil)
		return
	}

	res, err := h.generate(r)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to generate inventory", nil)
		return
	}

	vars, found := res.Host(name)
	if !found {
		slog.Debug("host not in inventory", slog.String("host", name))
		server.WriteError(w, r, http.StatusNotFound, errors.ErrCodeNotFound,
			fmt.Sprintf("host %q not found", name), false, map[string]any{"host": name})
		return
	}

	serializer.Respond(w, http.StatusOK, format, vars)
}

// Check reports the outcome of the most recent inventory generation. It
// backs the readiness probe.
func (h *Handler) Check(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.lastErr != nil {
		return fmt.Errorf("last inventory generation failed: %w", h.lastErr)
	}
	return nil
}

func (h *Handler) generate(r *http.Request) (*inventory.Result, error) {
	res, err := h.assembler.Generate(r.Context(), h.src)
	if r.Context().Err() == nil {
		h.mu.Lock()
		h.lastErr = err
		h.mu.Unlock()
	}
	return res, err
}

// preflight enforces GET and resolves the response format from the format
// query parameter. It writes the error response itself when it returns false.
func (h *Handler) preflight(w http.ResponseWriter, r *http.Request) (serializer.Format, bool) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		server.WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
			"method not allowed", false, map[string]any{"method": r.Method})
		return "", false
	}

	switch f := serializer.Format(r.URL.Query().Get("format")); f {
	case "", serializer.FormatJSON:
		return serializer.FormatJSON, true
	case serializer.FormatYAML:
		return serializer.FormatYAML, true
	default:
		server.WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unsupported format %q", f), false,
			map[string]any{"supported": []string{string(serializer.FormatJSON), string(serializer.FormatYAML)}})
		return "", false
	}
}
