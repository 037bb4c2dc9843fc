package http

import (
	"net/http"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/service"
)

type ReservationHandler struct {
	reservationSvc service.ReservationService
	contractSvc    service.ContractService
}

func NewReservationHandler(reservationSvc service.ReservationService, contractSvc service.ContractService) *ReservationHandler {
	return &ReservationHandler{reservationSvc: reservationSvc, contractSvc: contractSvc}
}

func (h *ReservationHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.reservationSvc.Quote(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	rv, err := h.reservationSvc.Create(r.Context(), actorFrom(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := queryInt64(r, "vehicle_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	customerID, err := queryInt64(r, "customer_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := queryInt64(r, "page")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pageSize, err := queryInt64(r, "page_size")
	if err != nil {
		writeError(w, r, err)
		return
	}

	filter := domain.ReservationFilter{
		Status:     domain.ReservationStatus(r.URL.Query().Get("status")),
		VehicleID:  vehicleID,
		CustomerID: customerID,
		Page:       int32(min(page, 1<<20)),
		PageSize:   int32(min(pageSize, 1000)),
	}
	out, total, err := h.reservationSvc.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if out == nil {
		out = []domain.Reservation{}
	}
	writeJSON(w, http.StatusOK, listReservationsResponse{Reservations: out, Total: total})
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rv, err := h.reservationSvc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *ReservationHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rv, err := h.reservationSvc.MarkPaid(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *ReservationHandler) IssueContract(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req issueContractRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.contractSvc.IssueContract(r.Context(), actorFrom(r.Context()), id, domain.ContractKind(req.Kind), req.Evidence.toEvidence())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ReservationHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.contractSvc.ListByReservation(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if out == nil {
		out = []domain.Contract{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"contracts": out})
}

func (h *ReservationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rv, err := h.reservationSvc.Confirm(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req cancelRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rv, err := h.reservationSvc.Cancel(r.Context(), actorFrom(r.Context()), id, req.Reason, req.WithRefund)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *ReservationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	// The body is optional
	var req completeRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	rv, err := h.reservationSvc.Complete(r.Context(), actorFrom(r.Context()), id, req.ReturnOdometer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}
