package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"rentacar-backend/internal/security"
	"rentacar-backend/internal/service"
	"rentacar-backend/internal/storage"
)

// RouterDeps are the collaborators the HTTP API is built from
type RouterDeps struct {
	Reservations service.ReservationService
	Contracts    service.ContractService
	Customers    service.CustomerService
	Availability service.AvailabilityService
	Tokens       security.TokenManager
	// Documents is set only for the local document store, whose presigned
	// URLs point back at this server
	Documents *storage.LocalStore
}

// NewRouter registers every named route. Route names are the keys of
// config.RouteSecurityConfig.
func NewRouter(deps RouterDeps) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, loggingMiddleware, recoveryMiddleware, authMiddleware(deps.Tokens))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet).Name("health")

	if deps.Documents != nil {
		docs := NewDocumentHandler(deps.Documents)
		r.HandleFunc("/files/{key:.+}", docs.HandleUpload).Methods(http.MethodPut).Name("documents.upload")
		r.HandleFunc("/files/{key:.+}", docs.HandleDownload).Methods(http.MethodGet).Name("documents.download")
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	reservations := NewReservationHandler(deps.Reservations, deps.Contracts)
	api.HandleFunc("/reservations/quote", reservations.Quote).Methods(http.MethodPost).Name("reservations.quote")
	api.HandleFunc("/reservations", reservations.Create).Methods(http.MethodPost).Name("reservations.create")
	api.HandleFunc("/reservations", reservations.List).Methods(http.MethodGet).Name("reservations.list")
	api.HandleFunc("/reservations/{id:[0-9]+}", reservations.Get).Methods(http.MethodGet).Name("reservations.get")
	api.HandleFunc("/reservations/{id:[0-9]+}/pay", reservations.MarkPaid).Methods(http.MethodPost).Name("reservations.pay")
	api.HandleFunc("/reservations/{id:[0-9]+}/contract", reservations.IssueContract).Methods(http.MethodPost).Name("reservations.contract")
	api.HandleFunc("/reservations/{id:[0-9]+}/contracts", reservations.ListContracts).Methods(http.MethodGet).Name("reservations.contracts")
	api.HandleFunc("/reservations/{id:[0-9]+}/confirm", reservations.Confirm).Methods(http.MethodPost).Name("reservations.confirm")
	api.HandleFunc("/reservations/{id:[0-9]+}/cancel", reservations.Cancel).Methods(http.MethodPost).Name("reservations.cancel")
	api.HandleFunc("/reservations/{id:[0-9]+}/complete", reservations.Complete).Methods(http.MethodPost).Name("reservations.complete")

	vehicles := NewVehicleHandler(deps.Availability)
	api.HandleFunc("/vehicles/{id:[0-9]+}/availability", vehicles.Availability).Methods(http.MethodGet).Name("vehicles.availability")

	contracts := NewContractHandler(deps.Contracts)
	api.HandleFunc("/contracts", contracts.IssueWalkIn).Methods(http.MethodPost).Name("contracts.walkin")
	api.HandleFunc("/contracts/evidence-uploads", contracts.EvidenceUploadURL).Methods(http.MethodPost).Name("contracts.evidence_upload_url")
	api.HandleFunc("/contracts/{id:[0-9]+}", contracts.Get).Methods(http.MethodGet).Name("contracts.get")
	api.HandleFunc("/contracts/{id:[0-9]+}/convert", contracts.Convert).Methods(http.MethodPost).Name("contracts.convert")

	customers := NewCustomerHandler(deps.Customers)
	api.HandleFunc("/customers", customers.Lookup).Methods(http.MethodGet).Name("customers.lookup")

	return r
}
