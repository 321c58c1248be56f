package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gorilla/mux"

	"github.com/receiptlab/receipt-extraction-service/internal/db"
	"github.com/receiptlab/receipt-extraction-service/internal/models"
	"github.com/receiptlab/receipt-extraction-service/internal/pipeline"
	"github.com/receiptlab/receipt-extraction-service/internal/storage"
)

const (
	MaxUploadSize = 10 * 1024 * 1024 // 10MB
	Version       = "1.2.0"
)

// Handler handles HTTP requests for receipt upload, extraction and retrieval
type Handler struct {
	config       *models.Config
	store        *storage.Store
	orchestrator *pipeline.Orchestrator
}

// NewHandler creates a new API handler
func NewHandler(config *models.Config, store *storage.Store, orchestrator *pipeline.Orchestrator) *Handler {
	return &Handler{
		config:       config,
		store:        store,
		orchestrator: orchestrator,
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	// Receipt upload and retrieval
	router.HandleFunc("/api/receipts", h.UploadReceipt).Methods("POST")
	router.HandleFunc("/api/receipts", h.GetRecords).Methods("GET")

	// On-demand batch extraction over the whole bucket
	router.HandleFunc("/api/receipts/process", h.ProcessReceipts).Methods("POST")

	// Health check
	router.HandleFunc("/health", h.Health).Methods("GET")

	return router
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status     string        `json:"status"`
	Version    string        `json:"version"`
	Timestamp  string        `json:"timestamp"`
	Uptime     string        `json:"uptime"`
	Memory     MemoryStats   `json:"memory"`
	Database   ServiceStatus `json:"database"`
	Storage    ServiceStatus `json:"storage"`
	Strategies int           `json:"strategies"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	databaseStatus := ServiceStatus{Available: db.Pool != nil}
	if db.Pool == nil {
		databaseStatus.Error = "database pool not initialized"
	}
	storageStatus := ServiceStatus{Available: h.store != nil}
	if h.store == nil {
		storageStatus.Error = "storage client not initialized"
	}

	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		Database:   databaseStatus,
		Storage:    storageStatus,
		Strategies: len(h.config.Strategies),
	}

	if !storageStatus.Available {
		response.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

// UploadReceipt stores an uploaded receipt image in the bucket. Extraction
// happens later via the process endpoint or the batch worker.
func (h *Handler) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.store == nil {
		h.sendError(w, http.StatusServiceUnavailable, "storage not available")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		h.sendError(w, http.StatusBadRequest, "File too large or invalid form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	key := header.Filename
	if filepath.Ext(key) == "" {
		key += storage.ContentTypeExtension(header.Header.Get("Content-Type"))
	}

	if err := h.store.Upload(r.Context(), key, file, header.Size, header.Header.Get("Content-Type")); err != nil {
		h.sendError(w, http.StatusInternalServerError, "Error uploading file: "+err.Error())
		return
	}

	h.sendJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"key":     key,
		"size":    header.Size,
	})
}

// ProcessResponse is the output of an on-demand batch run.
type ProcessResponse struct {
	Success  bool         `json:"success"`
	Records  models.Batch `json:"records"`
	Failures int          `json:"failures"`
	Duration float64      `json:"duration"` // seconds
}

// ProcessReceipts runs the full extraction grid over the receipt bucket and
// persists the results.
func (h *Handler) ProcessReceipts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.store == nil {
		h.sendError(w, http.StatusServiceUnavailable, "storage not available")
		return
	}

	start := time.Now()
	ctx := r.Context()

	keys, err := h.store.List(ctx)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "Error listing bucket: "+err.Error())
		return
	}

	batch, failures := h.orchestrator.Run(ctx, keys)

	if db.Pool != nil {
		for i := range batch {
			if _, err := db.SaveRecord(ctx, &batch[i]); err != nil {
				h.sendError(w, http.StatusInternalServerError, "Error saving record: "+err.Error())
				return
			}
		}
	}

	h.sendJSON(w, http.StatusOK, ProcessResponse{
		Success:  true,
		Records:  batch,
		Failures: len(failures),
		Duration: time.Since(start).Seconds(),
	})
}

// GetRecords returns persisted records for one model identifier. The model
// query parameter is required.
func (h *Handler) GetRecords(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	modelID := r.URL.Query().Get("model")
	if modelID == "" {
		h.sendError(w, http.StatusBadRequest, "Model-ID is required")
		return
	}

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	limit := 100
	records, err := db.GetRecordsByModel(r.Context(), modelID, limit)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "Error retrieving data: "+err.Error())
		return
	}

	h.sendJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(records),
		"records": records,
	})
}

func (h *Handler) sendJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) sendError(w http.ResponseWriter, status int, message string) {
	h.sendJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}
