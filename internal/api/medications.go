package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/cmas/internal/imaging"
	"github.com/erazemk/cmas/internal/ledger"
	"github.com/erazemk/cmas/internal/model"
	"github.com/erazemk/cmas/internal/store"
)

// MedicationsHandler handles medication endpoints.
type MedicationsHandler struct {
	DB     *sql.DB
	Ledger *ledger.Ledger
	Logger *slog.Logger
}

type createMedicationRequest struct {
	Name             string `json:"name"`
	CurrentStock     int    `json:"current_stock"`
	MinimumThreshold int    `json:"minimum_threshold"`
	Unit             string `json:"unit"`
	Description      string `json:"description"`
}

type updateMedicationRequest struct {
	Name             *string `json:"name"`
	MinimumThreshold *int    `json:"minimum_threshold"`
	Unit             *string `json:"unit"`
	Description      *string `json:"description"`
}

type useMedicationRequest struct {
	QuantityUsed int    `json:"quantity_used"`
	Notes        string `json:"notes"`
}

type useMedicationResponse struct {
	Message  string `json:"message"`
	NewStock int    `json:"new_stock"`
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

// List handles GET /api/medications.
func (h *MedicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	meds, err := store.ListMedications(r.Context(), h.DB)
	if err != nil {
		domainError(w, h.Logger, err, "failed to list medications")
		return
	}
	if meds == nil {
		meds = []model.Medication{}
	}
	jsonResponse(w, http.StatusOK, meds)
}

// Create handles POST /api/medications.
func (h *MedicationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMedicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)
	if req.Name == "" || req.Unit == "" {
		jsonError(w, http.StatusBadRequest, "name and unit required")
		return
	}
	if req.CurrentStock < 0 || req.MinimumThreshold < 0 {
		jsonError(w, http.StatusBadRequest, "stock and threshold must not be negative")
		return
	}

	med, err := store.CreateMedication(r.Context(), h.DB, req.Name, req.CurrentStock, req.MinimumThreshold, req.Unit, req.Description)
	if err != nil {
		domainError(w, h.Logger, err, "failed to create medication")
		return
	}

	claims := GetClaims(r.Context())
	h.Logger.Info("medication created", "user", claims.Username, "medication", med.Name, "stock", med.CurrentStock)
	jsonResponse(w, http.StatusCreated, med)
}

// Get handles GET /api/medications/{id}.
func (h *MedicationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	med, err := store.GetMedication(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		domainError(w, h.Logger, err, "failed to get medication")
		return
	}
	if med == nil {
		jsonError(w, http.StatusNotFound, "medication not found")
		return
	}
	jsonResponse(w, http.StatusOK, med)
}

// Update handles PUT /api/medications/{id}. Stock cannot be changed here.
func (h *MedicationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateMedicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		jsonError(w, http.StatusBadRequest, "name must not be empty")
		return
	}
	if req.Unit != nil && strings.TrimSpace(*req.Unit) == "" {
		jsonError(w, http.StatusBadRequest, "unit must not be empty")
		return
	}
	if req.MinimumThreshold != nil && *req.MinimumThreshold < 0 {
		jsonError(w, http.StatusBadRequest, "threshold must not be negative")
		return
	}

	med, err := store.UpdateMedication(r.Context(), h.DB, r.PathValue("id"), store.MedicationUpdate{
		Name:             req.Name,
		MinimumThreshold: req.MinimumThreshold,
		Unit:             req.Unit,
		Description:      req.Description,
	})
	if err != nil {
		domainError(w, h.Logger, err, "failed to update medication")
		return
	}

	claims := GetClaims(r.Context())
	h.Logger.Info("medication updated", "user", claims.Username, "medication", med.Name)
	jsonResponse(w, http.StatusOK, med)
}

// Delete handles DELETE /api/medications/{id}.
func (h *MedicationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := store.DeleteMedication(r.Context(), h.DB, id); err != nil {
		domainError(w, h.Logger, err, "failed to delete medication")
		return
	}

	claims := GetClaims(r.Context())
	h.Logger.Info("medication deleted", "user", claims.Username, "medication", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "medication deleted"})
}

// Use handles POST /api/medications/{id}/use. Alerts raised by the usage are
// dispatched before responding but never change the response.
func (h *MedicationsHandler) Use(w http.ResponseWriter, r *http.Request) {
	var req useMedicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	res, err := h.Ledger.LogUsage(r.Context(), ledger.Usage{
		MedicationID: r.PathValue("id"),
		Quantity:     req.QuantityUsed,
		UserID:       claims.UserID,
		UserName:     claims.Username,
		Notes:        strings.TrimSpace(req.Notes),
	})
	if err != nil {
		domainError(w, h.Logger, err, "failed to log usage")
		return
	}

	jsonResponse(w, http.StatusOK, useMedicationResponse{
		Message:  "Usage logged successfully",
		NewStock: res.Medication.CurrentStock,
	})
}

// Restock handles POST /api/medications/{id}/restock.
func (h *MedicationsHandler) Restock(w http.ResponseWriter, r *http.Request) {
	var req restockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	med, err := h.Ledger.Restock(r.Context(), r.PathValue("id"), req.Quantity)
	if err != nil {
		domainError(w, h.Logger, err, "failed to restock medication")
		return
	}

	claims := GetClaims(r.Context())
	h.Logger.Info("restock recorded", "user", claims.Username, "medication", med.Name, "quantity", req.Quantity)
	jsonResponse(w, http.StatusOK, med)
}

// UploadImage handles PUT /api/medications/{id}/image.
func (h *MedicationsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+(1<<20))

	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			jsonError(w, http.StatusBadRequest, "image must be JPEG or PNG")
			return
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetMedicationImage(r.Context(), h.DB, r.PathValue("id"), photo.Data, photo.MIME); err != nil {
		domainError(w, h.Logger, err, "failed to save image")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "image uploaded",
		"width":   photo.Width,
		"height":  photo.Height,
	})
}

// GetImage handles GET /api/medications/{id}/image.
func (h *MedicationsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetMedicationImage(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		domainError(w, h.Logger, err, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
