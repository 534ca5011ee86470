package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/service"
)

// EquipmentHandler exposes the equipment directory over HTTP.
type EquipmentHandler struct {
	equipmentSvc service.EquipmentService
}

func NewEquipmentHandler(equipmentSvc service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipmentSvc: equipmentSvc}
}

type availabilityResponse struct {
	EquipmentID int32 `json:"equipment_id"`
	Quantity    int32 `json:"quantity"`
	Available   bool  `json:"available"`
}

func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var eq domain.Equipment
	if err := json.NewDecoder(r.Body).Decode(&eq); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.equipmentSvc.AddEquipment(r.Context(), &eq); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, eq)
}

func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	eq, err := h.equipmentSvc.GetEquipment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eq)
}

func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var eq domain.Equipment
	if err := json.NewDecoder(r.Body).Decode(&eq); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	eq.ID = id
	if err := h.equipmentSvc.UpdateEquipment(r.Context(), &eq); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eq)
}

func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if query := r.URL.Query().Get("q"); query != "" || r.URL.Query().Get("category") != "" {
		items, err := h.equipmentSvc.SearchEquipment(r.Context(), query, r.URL.Query().Get("category"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse{Items: items, TotalCount: int32(len(items)), Page: 1, PageSize: int32(len(items))})
		return
	}

	page, pageSize := pagination(r)
	items, total, err := h.equipmentSvc.ListEquipment(r.Context(), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, TotalCount: total, Page: page, PageSize: pageSize})
}

type stockAdjustmentRequest struct {
	AvailableDelta   int32 `json:"available_delta"`
	MaintenanceDelta int32 `json:"maintenance_delta"`
}

// AdjustStock handles inventory counter changes: maintenance moves and restocks.
func (h *EquipmentHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req stockAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	eq, err := h.equipmentSvc.AdjustStock(r.Context(), id, req.AvailableDelta, req.MaintenanceDelta)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eq)
}

// CheckAvailability is a non-binding read; the reservation itself is the
// authoritative check.
func (h *EquipmentHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	quantity := int32(1)
	if v, err := strconv.ParseInt(r.URL.Query().Get("quantity"), 10, 32); err == nil && v > 0 {
		quantity = int32(v)
	}

	available, err := h.equipmentSvc.CheckAvailability(r.Context(), id, quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{EquipmentID: id, Quantity: quantity, Available: available})
}
