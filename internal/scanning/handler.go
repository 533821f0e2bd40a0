package scanning

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jharmon/splittab/pkg/response"
)

const maxUploadBytes = 10 << 20

// Handler handles HTTP requests for receipt scan jobs
type Handler struct {
	store *JobStore
}

// NewHandler creates a new scanning handler
func NewHandler(store *JobStore) *Handler {
	return &Handler{store: store}
}

// Routes returns the router for scan endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/{jobId}", h.Get)
	r.Delete("/{jobId}", h.Cancel)

	return r
}

// Create handles POST /scans
// @Summary      Start a receipt scan
// @Description  Uploads a receipt image and starts an asynchronous OCR and parse job; poll the returned job for progress
// @Tags         scans
// @Accept       multipart/form-data
// @Produce      json
// @Param        image formData file true "Receipt image"
// @Success      202 {object} response.APIResponse{data=Job}
// @Failure      400 {object} response.APIResponse
// @Failure      503 {object} response.APIResponse
// @Router       /scans [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.BadRequest(w, "Missing image file")
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		response.BadRequest(w, "Failed to read image")
		return
	}

	job, err := h.store.Enqueue(imageData, header.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, ErrScanningDisabled) {
			response.Error(w, http.StatusServiceUnavailable, "SCANNING_DISABLED", err.Error())
			return
		}
		response.InternalError(w, "Failed to start scan")
		return
	}

	response.JSON(w, http.StatusAccepted, job)
}

// Get handles GET /scans/{jobId}
// @Summary      Get scan job status
// @Description  Returns the job's progress checkpoint and, once completed, the parsed receipt
// @Tags         scans
// @Produce      json
// @Param        jobId path string true "Scan job ID"
// @Success      200 {object} response.APIResponse{data=Job}
// @Failure      404 {object} response.APIResponse
// @Router       /scans/{jobId} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	job := h.store.Get(chi.URLParam(r, "jobId"))
	if job == nil {
		response.NotFound(w, ErrJobNotFound.Error())
		return
	}

	response.JSON(w, http.StatusOK, job)
}

// Cancel handles DELETE /scans/{jobId}
// @Summary      Cancel a scan job
// @Tags         scans
// @Produce      json
// @Param        jobId path string true "Scan job ID"
// @Success      200 {object} response.APIResponse{data=Job}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /scans/{jobId} [delete]
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobId")
	if err := h.store.Cancel(id); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.Conflict(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, h.store.Get(id))
}
