package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"informer/internal/codec"
	"informer/internal/informer"
)

// Querier is the query surface the API serves
type Querier interface {
	GetRoles(ctx context.Context, role string) ([]string, error)
	GetNodeGrainItem(ctx context.Context, name, item string) (any, error)
	All(ctx context.Context) (map[string]string, error)
	Call(ctx context.Context, function string, args ...string) (any, error)
}

// ErrorResponse is the JSON body of a failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// APIHandler handles API requests
type APIHandler struct {
	svc    Querier
	logger *zap.Logger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(svc Querier, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{svc: svc, logger: logger.Named("api")}
}

// Register adds the API routes to mux
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/roles/{role}", h.GetRoles)
	mux.HandleFunc("GET /api/minions/{name}/grains/{item}", h.GetGrainItem)
	mux.HandleFunc("GET /api/addresses", h.GetAddresses)
	mux.HandleFunc("GET /api/call/{function}", h.Call)
}

// GetRoles returns the minions holding a role
func (h *APIHandler) GetRoles(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.GetRoles(r.Context(), r.PathValue("role"))
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	h.write(w, r, names)
}

// GetGrainItem returns one grain of one minion
func (h *APIHandler) GetGrainItem(w http.ResponseWriter, r *http.Request) {
	value, err := h.svc.GetNodeGrainItem(r.Context(), r.PathValue("name"), r.PathValue("item"))
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	h.write(w, r, value)
}

// GetAddresses returns every minion's address
func (h *APIHandler) GetAddresses(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.svc.All(r.Context())
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	h.write(w, r, addrs)
}

// Call invokes a function by name; positional arguments come from
// repeated arg query parameters
func (h *APIHandler) Call(w http.ResponseWriter, r *http.Request) {
	args := r.URL.Query()["arg"]
	result, err := h.svc.Call(r.Context(), r.PathValue("function"), args...)
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	h.write(w, r, result)
}

// Helper methods

func (h *APIHandler) write(w http.ResponseWriter, r *http.Request, data any) {
	enc, err := codec.ForFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.writeError(w, "Invalid format", err.Error(), http.StatusBadRequest)
		return
	}

	contentType := "application/json"
	if enc.Format() == "yaml" {
		contentType = "application/x-yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)

	if err := enc.Encode(w, data); err != nil {
		h.logger.Error("failed to encode response", zap.String("format", enc.Format()), zap.Error(err))
	}
}

// writeQueryError maps query failures onto status codes
func (h *APIHandler) writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case informer.IsLookup(err):
		h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
	case errors.Is(err, informer.ErrUnknownFunction):
		h.writeError(w, "Unknown function", err.Error(), http.StatusNotFound)
	case errors.Is(err, informer.ErrArgCount):
		h.writeError(w, "Bad arguments", err.Error(), http.StatusBadRequest)
	default:
		h.logger.Warn("mine query failed", zap.Error(err))
		h.writeError(w, "Mine query failed", err.Error(), http.StatusBadGateway)
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		h.logger.Error("failed to encode error response", zap.Error(err))
	}
}
