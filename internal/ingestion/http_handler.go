package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/rowgate/rowgate/internal/domain"
	"github.com/rowgate/rowgate/internal/repository"
)

const maxMultipartMemory = 32 << 20

// Handler exposes ingestion and operation review over HTTP.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with its HTTP endpoints.
func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the ingestion routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ingest", h.ingest)
	mux.HandleFunc("GET /api/operations", h.listOperations)
	mux.HandleFunc("GET /api/operations/{id}", h.getOperation)
	mux.HandleFunc("GET /api/operations/{id}/errors", h.operationErrors)
	mux.HandleFunc("DELETE /api/operations/{id}", h.deleteOperation)
}

func (h *Handler) ingest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeIngestFailure(w, domain.CodeMissingParameters, fmt.Sprintf("invalid form data: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeIngestFailure(w, domain.CodeMissingParameters, "file field is required")
		return
	}
	defer file.Close()

	configID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("config_id")), 10, 64)
	if err != nil {
		writeIngestFailure(w, domain.CodeMissingParameters, "config_id is required and must be an integer")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeIngestFailure(w, domain.CodeMissingParameters, fmt.Sprintf("failed to read file: %v", err))
		return
	}

	result := h.service.Ingest(r.Context(), Request{
		ConfigID: configID,
		FileName: header.Filename,
		Data:     data,
	})
	writeJSON(w, result.HTTPStatus, result)
}

func (h *Handler) listOperations(w http.ResponseWriter, r *http.Request) {
	var filter repository.OperationFilter
	if raw := r.URL.Query().Get("config_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "config_id must be an integer", http.StatusBadRequest)
			return
		}
		filter.ConfigID = parsed
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.OperationStatus(raw)
		if !status.Valid() {
			http.Error(w, "unknown status", http.StatusBadRequest)
			return
		}
		filter.Status = status
	}
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	filter.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	ops, err := h.service.Operations(r.Context(), filter)
	if err != nil {
		http.Error(w, "failed to list operations", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ops)
}

func (h *Handler) getOperation(w http.ResponseWriter, r *http.Request) {
	id, ok := operationID(w, r)
	if !ok {
		return
	}

	op, err := h.service.Operation(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "operation not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to get operation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, op)
}

func (h *Handler) operationErrors(w http.ResponseWriter, r *http.Request) {
	id, ok := operationID(w, r)
	if !ok {
		return
	}

	errs, err := h.service.OperationErrors(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "operation not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to list operation errors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, RowLevelErrors{Total: len(errs), AllErrors: errs})
}

func (h *Handler) deleteOperation(w http.ResponseWriter, r *http.Request) {
	id, ok := operationID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteOperation(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "operation not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete operation", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func operationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid operation id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeIngestFailure(w http.ResponseWriter, code domain.ErrorCode, message string) {
	writeJSON(w, http.StatusBadRequest, Result{
		Status: domain.OperationStatusFailed,
		Error:  &ResultError{Code: code, Message: message},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
