package configapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rowgate/rowgate/internal/domain"
	"github.com/rowgate/rowgate/internal/repository"
)

// Handler exposes configuration management over HTTP.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with its HTTP endpoints.
func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the configuration routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/configurations", h.createConfiguration)
	mux.HandleFunc("GET /api/configurations", h.listConfigurations)
	mux.HandleFunc("GET /api/configurations/{id}", h.getConfiguration)
	mux.HandleFunc("PUT /api/configurations/{id}", h.updateConfiguration)
	mux.HandleFunc("DELETE /api/configurations/{id}", h.deleteConfiguration)
	mux.HandleFunc("GET /api/configurations/{id}/template", h.downloadTemplate)

	mux.HandleFunc("POST /api/storage-configurations", h.createStorageConfiguration)
	mux.HandleFunc("GET /api/storage-configurations", h.listStorageConfigurations)
	mux.HandleFunc("GET /api/storage-configurations/{id}", h.getStorageConfiguration)
	mux.HandleFunc("PUT /api/storage-configurations/{id}", h.updateStorageConfiguration)
	mux.HandleFunc("DELETE /api/storage-configurations/{id}", h.deleteStorageConfiguration)
}

func (h *Handler) createConfiguration(w http.ResponseWriter, r *http.Request) {
	var cfg domain.UploadConfiguration
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateConfiguration(r.Context(), cfg)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) listConfigurations(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	configs, err := h.service.ListConfigurations(r.Context(), includeInactive)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, configs)
}

func (h *Handler) getConfiguration(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	cfg, err := h.service.GetConfiguration(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *Handler) updateConfiguration(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var cfg domain.UploadConfiguration
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	cfg.ID = id

	updated, err := h.service.UpdateConfiguration(r.Context(), cfg)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteConfiguration(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteConfiguration(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) downloadTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	fileName, content, err := h.service.Template(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	_, _ = w.Write(content)
}

func (h *Handler) createStorageConfiguration(w http.ResponseWriter, r *http.Request) {
	var cfg domain.StorageConfiguration
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateStorageConfiguration(r.Context(), cfg)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) listStorageConfigurations(w http.ResponseWriter, r *http.Request) {
	configs, err := h.service.ListStorageConfigurations(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, configs)
}

func (h *Handler) getStorageConfiguration(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	cfg, err := h.service.GetStorageConfiguration(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *Handler) updateStorageConfiguration(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var cfg domain.StorageConfiguration
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	cfg.ID = id

	updated, err := h.service.UpdateStorageConfiguration(r.Context(), cfg)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteStorageConfiguration(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteStorageConfiguration(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrInUse):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
