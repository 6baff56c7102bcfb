package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/otcheredev/ris-dicom-imaging/internal/imaging"
	"github.com/otcheredev/ris-dicom-imaging/internal/middleware"
	"github.com/otcheredev/ris-dicom-imaging/internal/models"
	"github.com/otcheredev/ris-dicom-imaging/internal/services"
	"github.com/otcheredev/ris-dicom-imaging/internal/storage"
	"github.com/otcheredev/ris-dicom-imaging/pkg/dicom"
	"github.com/rs/zerolog/log"
)

type CatalogHandler struct {
	catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Routes mounts the catalog API on r
func (h *CatalogHandler) Routes(r chi.Router) {
	r.Get("/studies", h.ListStudies)
	r.Get("/studies/{studyID}", h.GetStudy)
	r.Get("/studies/{studyID}/series/{seriesID}", h.GetSeries)
	r.Get("/studies/{studyID}/series/{seriesID}/images/{imageType}", h.GetImage)
	r.Get("/studies/{studyID}/series/{seriesID}/images/{imageType}/pixel", h.GetPixel)
	r.Get("/studies/{studyID}/series/{seriesID}/images/{imageType}/thumbnail", h.GetThumbnail)

	r.Group(func(r chi.Router) {
		r.Use(middleware.UserID)

		r.Post("/studies/scan", h.ScanStudy)
		r.Put("/studies/{studyID}/series/{seriesID}/description", h.UpdateSeriesDescription)
		r.Post("/studies/{studyID}/series/{seriesID}/images/{imageType}/derive", h.DeriveImage)
		r.Post("/studies/{studyID}/series/{seriesID}/sto2", h.DeriveStO2)
		r.Get("/studies/{studyID}/audit", h.StudyAudit)
		r.Get("/audit", h.UserAudit)
	})
}

// ScanStudy indexes a study directory
func (h *CatalogHandler) ScanStudy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := middleware.GetUserID(ctx)

	var req models.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	study, err := h.catalog.ScanStudy(ctx, req, userID)
	if err != nil {
		writeError(w, err, "Failed to scan study")
		return
	}

	writeJSON(w, http.StatusCreated, study)
}

// ListStudies lists indexed studies, newest first
func (h *CatalogHandler) ListStudies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := models.StudyQuery{
		PatientID:        q.Get("patient_id"),
		StudyDate:        q.Get("study_date"),
		StudyDescription: q.Get("description"),
	}
	var err error
	if query.Limit, err = intParam(r, "limit", 0); err != nil {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}
	if query.Offset, err = intParam(r, "offset", 0); err != nil {
		http.Error(w, "Invalid offset", http.StatusBadRequest)
		return
	}

	studies, err := h.catalog.ListStudies(r.Context(), query)
	if err != nil {
		writeError(w, err, "Failed to list studies")
		return
	}

	writeJSON(w, http.StatusOK, studies)
}

// GetStudy returns one study description
func (h *CatalogHandler) GetStudy(w http.ResponseWriter, r *http.Request) {
	study, err := h.catalog.GetStudy(r.Context(), chi.URLParam(r, "studyID"))
	if err != nil {
		writeError(w, err, "Failed to get study")
		return
	}
	writeJSON(w, http.StatusOK, study)
}

// GetSeries returns one series description
func (h *CatalogHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.catalog.GetSeries(r.Context(), chi.URLParam(r, "studyID"), chi.URLParam(r, "seriesID"))
	if err != nil {
		writeError(w, err, "Failed to get series")
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// GetImage describes one image slot. ?header=true adds the header listing.
func (h *CatalogHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	t, ok := imageTypeParam(w, r)
	if !ok {
		return
	}
	withHeader, _ := strconv.ParseBool(r.URL.Query().Get("header"))

	info, err := h.catalog.ImageInfo(r.Context(), chi.URLParam(r, "studyID"), chi.URLParam(r, "seriesID"), t, withHeader)
	if err != nil {
		writeError(w, err, "Failed to read image")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// GetPixel reads one sample at ?row=&col=&frame=
func (h *CatalogHandler) GetPixel(w http.ResponseWriter, r *http.Request) {
	t, ok := imageTypeParam(w, r)
	if !ok {
		return
	}
	row, err1 := intParam(r, "row", -1)
	col, err2 := intParam(r, "col", -1)
	frame, err3 := intParam(r, "frame", 0)
	if err := errors.Join(err1, err2, err3); err != nil {
		http.Error(w, "Invalid pixel coordinates", http.StatusBadRequest)
		return
	}

	px, err := h.catalog.PixelValue(r.Context(), chi.URLParam(r, "studyID"), chi.URLParam(r, "seriesID"), t, row, col, frame)
	if err != nil {
		writeError(w, err, "Failed to read pixel")
		return
	}
	writeJSON(w, http.StatusOK, px)
}

// GetThumbnail renders the image as PNG, ?size= pixels wide
func (h *CatalogHandler) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	t, ok := imageTypeParam(w, r)
	if !ok {
		return
	}
	size, err := intParam(r, "size", 0)
	if err != nil || size < 0 || size > 4096 {
		http.Error(w, "Invalid size", http.StatusBadRequest)
		return
	}

	data, err := h.catalog.Thumbnail(r.Context(), chi.URLParam(r, "studyID"), chi.URLParam(r, "seriesID"), t, size)
	if err != nil {
		writeError(w, err, "Failed to render thumbnail")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// UpdateSeriesDescription replaces the free-text description of a series
func (h *CatalogHandler) UpdateSeriesDescription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := middleware.GetUserID(ctx)

	var req models.SeriesDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	series, err := h.catalog.UpdateSeriesDescription(ctx, chi.URLParam(r, "studyID"), chi.URLParam(r, "seriesID"), req.Description, userID)
	if err != nil {
		writeError(w, err, "Failed to update series description")
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// DeriveImage copies an image slot to another slot and stores it
func (h *CatalogHandler) DeriveImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := middleware.GetUserID(ctx)

	src, ok := imageTypeParam(w, r)
	if !ok {
		return
	}
	var req models.DeriveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	dst, err := imaging.ParseImageType(req.Target)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	info, err := h.catalog.SaveDerived(ctx, chi.URLParam(r, "studyID"), chi.URLParam(r, "seriesID"), src, dst, userID)
	if err != nil {
		writeError(w, err, "Failed to derive image")
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// DeriveStO2 builds an image slot from a saturation grid
func (h *CatalogHandler) DeriveStO2(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := middleware.GetUserID(ctx)

	var req models.StO2Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	t, err := imaging.ParseImageType(req.Target)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	info, err := h.catalog.DeriveStO2(ctx, chi.URLParam(r, "studyID"), chi.URLParam(r, "seriesID"), req.Grid, req.Scaled, t, userID)
	if err != nil {
		writeError(w, err, "Failed to derive image")
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func imageTypeParam(w http.ResponseWriter, r *http.Request) (imaging.ImageType, bool) {
	t, err := imaging.ParseImageType(chi.URLParam(r, "imageType"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return imaging.Undefined, false
	}
	return t, true
}

// StudyAudit lists the audit entries of a study, newest first. ?user_id
// keeps one user's entries.
func (h *CatalogHandler) StudyAudit(w http.ResponseWriter, r *http.Request) {
	q, ok := auditQuery(w, r)
	if !ok {
		return
	}
	q.StudyID = chi.URLParam(r, "studyID")
	h.writeAudit(w, r, q)
}

// UserAudit lists the audit entries written by ?user_id, newest first
func (h *CatalogHandler) UserAudit(w http.ResponseWriter, r *http.Request) {
	q, ok := auditQuery(w, r)
	if !ok {
		return
	}
	if q.UserID == uuid.Nil {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	h.writeAudit(w, r, q)
}

func (h *CatalogHandler) writeAudit(w http.ResponseWriter, r *http.Request, q models.AuditQuery) {
	logs, err := h.catalog.AuditLog(r.Context(), q)
	if err != nil {
		writeError(w, err, "Failed to get audit log")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func auditQuery(w http.ResponseWriter, r *http.Request) (models.AuditQuery, bool) {
	var q models.AuditQuery
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Invalid user_id", http.StatusBadRequest)
			return q, false
		}
		q.UserID = id
	}
	var err error
	if q.Limit, err = intParam(r, "limit", 0); err != nil {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return q, false
	}
	if q.Offset, err = intParam(r, "offset", 0); err != nil {
		http.Error(w, "Invalid offset", http.StatusBadRequest)
		return q, false
	}
	return q, true
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to status codes. Unexpected errors are
// logged and reported as msg.
func writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, services.ErrStudyNotFound),
		errors.Is(err, services.ErrSeriesNotFound),
		errors.Is(err, services.ErrImageNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidRequest),
		errors.Is(err, storage.ErrInvalidPath),
		errors.Is(err, imaging.ErrInvalidPixelOperation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, dicom.ErrUnsupportedPixelFormat),
		errors.Is(err, imaging.ErrPixelsUnavailable):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, services.ErrAuditUnavailable):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		log.Error().Err(err).Msg(msg)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

