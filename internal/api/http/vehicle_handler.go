package http

import (
	"net/http"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/service"
)

type VehicleHandler struct {
	availabilitySvc service.AvailabilityService
}

func NewVehicleHandler(availabilitySvc service.AvailabilityService) *VehicleHandler {
	return &VehicleHandler{availabilitySvc: availabilitySvc}
}

// Availability answers whether the vehicle is free for [start, end) and lists
// the reservations in the way when it is not
func (h *VehicleHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, err := queryTime(r, "start")
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := queryTime(r, "end")
	if err != nil {
		writeError(w, r, err)
		return
	}
	excludeRaw, err := queryInt64(r, "exclude_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var exclude *int64
	if excludeRaw > 0 {
		exclude = &excludeRaw
	}

	free, err := h.availabilitySvc.IsAvailable(r.Context(), id, start, end, exclude)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := availabilityResponse{VehicleID: id, StartAt: start, EndAt: end, Available: free, Conflicts: []domain.Reservation{}}
	if !free {
		conflicts, err := h.availabilitySvc.Conflicts(r.Context(), id, start, end, exclude)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if conflicts != nil {
			resp.Conflicts = conflicts
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
