package http

import (
	"net/http"

	"rentacar-backend/internal/service"
)

type CustomerHandler struct {
	customerSvc service.CustomerService
}

func NewCustomerHandler(customerSvc service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerSvc: customerSvc}
}

// Lookup finds a customer by ID document for the reservation form
func (h *CustomerHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	c, err := h.customerSvc.GetByDocument(r.Context(), r.URL.Query().Get("document"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
