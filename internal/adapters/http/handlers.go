package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/application"
	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/contracts"
	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/domain"
)

// Handler is the HTTP adapter entrypoint for the inventory engine.
// Keeping only the application dependency here preserves adapter boundaries.
type Handler struct {
	service *application.Service
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) addLot(w http.ResponseWriter, r *http.Request) {
	dealID, ok := pathUUID(w, r, "deal_id")
	if !ok {
		return
	}
	var req contracts.AddLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context()))
		return
	}
	unitCost, err := decimal.NewFromString(req.UnitCost)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "unit_cost must be a decimal string", requestIDFromContext(r.Context()))
		return
	}

	lot, err := h.service.AddLot(r.Context(), actorFromContext(r.Context()), application.AddLotInput{
		DealID:      dealID,
		SourceID:    req.SourceID,
		UnitsTotal:  req.UnitsTotal,
		UnitCost:    unitCost,
		Currency:    req.Currency,
		AcquiredAt:  req.AcquiredAt,
		LockupUntil: req.LockupUntil,
	})
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusCreated, "lot added", toLotResponse(lot))
}

func (h *Handler) listLots(w http.ResponseWriter, r *http.Request) {
	dealID, ok := pathUUID(w, r, "deal_id")
	if !ok {
		return
	}
	lots, err := h.service.ListLots(r.Context(), actorFromContext(r.Context()), dealID)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	out := make([]contracts.LotResponse, 0, len(lots))
	for _, lot := range lots {
		out = append(out, toLotResponse(lot))
	}
	writeSuccess(w, http.StatusOK, "deal lots", out)
}

func (h *Handler) placeHold(w http.ResponseWriter, r *http.Request) {
	dealID, ok := pathUUID(w, r, "deal_id")
	if !ok {
		return
	}
	var req contracts.PlaceHoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid json body", requestIDFromContext(r.Context()))
		return
	}
	unitPrice, err := decimal.NewFromString(req.ProposedUnitPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "proposed_unit_price must be a decimal string", requestIDFromContext(r.Context()))
		return
	}

	result, err := h.service.PlaceHold(r.Context(), actorFromContext(r.Context()), application.PlaceHoldInput{
		DealID:            dealID,
		InvestorID:        req.InvestorID,
		RequestedUnits:    req.RequestedUnits,
		ProposedUnitPrice: unitPrice,
		HoldMinutes:       req.HoldMinutes,
	})
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusCreated, "hold placed", toReservationResponse(result.Reservation, result.LotItems))
}

func (h *Handler) getReservation(w http.ResponseWriter, r *http.Request) {
	reservationID, ok := pathUUID(w, r, "reservation_id")
	if !ok {
		return
	}
	result, err := h.service.GetReservation(r.Context(), actorFromContext(r.Context()), reservationID)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "reservation", toReservationResponse(result.Reservation, result.LotItems))
}

func (h *Handler) releaseHold(w http.ResponseWriter, r *http.Request) {
	reservationID, ok := pathUUID(w, r, "reservation_id")
	if !ok {
		return
	}
	res, err := h.service.Release(r.Context(), actorFromContext(r.Context()), application.ReleaseInput{
		ReservationID: reservationID,
		Reason:        domain.ReleaseReasonCancelled,
	})
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "hold released", toReservationResponse(res, nil))
}

func (h *Handler) finalizeHold(w http.ResponseWriter, r *http.Request) {
	reservationID, ok := pathUUID(w, r, "reservation_id")
	if !ok {
		return
	}
	alloc, err := h.service.Finalize(r.Context(), actorFromContext(r.Context()), application.FinalizeInput{
		ReservationID: reservationID,
	})
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusCreated, "allocation finalized", toAllocationResponse(alloc, nil))
}

func (h *Handler) getAllocation(w http.ResponseWriter, r *http.Request) {
	allocationID, ok := pathUUID(w, r, "allocation_id")
	if !ok {
		return
	}
	result, err := h.service.GetAllocation(r.Context(), actorFromContext(r.Context()), allocationID)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "allocation", toAllocationResponse(result.Allocation, result.LotItems))
}

func (h *Handler) listAllocations(w http.ResponseWriter, r *http.Request) {
	dealID, ok := pathUUID(w, r, "deal_id")
	if !ok {
		return
	}
	allocs, err := h.service.ListAllocations(r.Context(), actorFromContext(r.Context()), dealID)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	out := make([]contracts.AllocationResponse, 0, len(allocs))
	for _, alloc := range allocs {
		out = append(out, toAllocationResponse(alloc, nil))
	}
	writeSuccess(w, http.StatusOK, "deal allocations", out)
}

func (h *Handler) dealSummary(w http.ResponseWriter, r *http.Request) {
	dealID, ok := pathUUID(w, r, "deal_id")
	if !ok {
		return
	}
	summary, err := h.service.GetSummary(r.Context(), actorFromContext(r.Context()), dealID)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "deal summary", contracts.SummaryResponse{
		DealID:         summary.DealID.String(),
		TotalUnits:     summary.TotalUnits,
		AvailableUnits: summary.AvailableUnits,
		ReservedUnits:  summary.ReservedUnits,
		AllocatedUnits: summary.AllocatedUnits,
		CalculatedAt:   summary.CalculatedAt,
	})
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", name+" must be a uuid", requestIDFromContext(r.Context()))
		return uuid.Nil, false
	}
	return id, true
}

func toLotResponse(lot domain.ShareLot) contracts.LotResponse {
	return contracts.LotResponse{
		LotID:          lot.LotID.String(),
		DealID:         lot.DealID.String(),
		SourceID:       lot.SourceID,
		UnitsTotal:     lot.UnitsTotal,
		UnitsRemaining: lot.UnitsRemaining,
		UnitCost:       lot.UnitCost.String(),
		Currency:       lot.Currency,
		AcquiredAt:     lot.AcquiredAt,
		LockupUntil:    lot.LockupUntil,
		Status:         lot.Status,
	}
}

func toReservationResponse(res domain.Reservation, items []domain.ReservationLotItem) contracts.ReservationResponse {
	out := contracts.ReservationResponse{
		ReservationID:     res.ReservationID.String(),
		DealID:            res.DealID.String(),
		InvestorID:        res.InvestorID,
		RequestedUnits:    res.RequestedUnits,
		ProposedUnitPrice: res.ProposedUnitPrice.String(),
		Status:            res.Status,
		ExpiresAt:         res.ExpiresAt,
		CreatedBy:         res.CreatedBy,
		CreatedAt:         res.CreatedAt,
	}
	for _, item := range items {
		out.LotItems = append(out.LotItems, contracts.LotItemResponse{
			LotID:      item.LotID.String(),
			UnitsDrawn: item.UnitsDrawn,
		})
	}
	return out
}

func toAllocationResponse(alloc domain.Allocation, items []domain.AllocationLotItem) contracts.AllocationResponse {
	out := contracts.AllocationResponse{
		AllocationID: alloc.AllocationID.String(),
		DealID:       alloc.DealID.String(),
		InvestorID:   alloc.InvestorID,
		Units:        alloc.Units,
		UnitPrice:    alloc.UnitPrice.String(),
		ApprovedBy:   alloc.ApprovedBy,
		ApprovedAt:   alloc.ApprovedAt,
	}
	if alloc.ReservationID != nil {
		out.ReservationID = alloc.ReservationID.String()
	}
	for _, item := range items {
		out.LotItems = append(out.LotItems, contracts.LotItemResponse{
			LotID:      item.LotID.String(),
			UnitsDrawn: item.UnitsDrawn,
		})
	}
	return out
}
