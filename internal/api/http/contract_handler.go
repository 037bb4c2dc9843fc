package http

import (
	"net/http"

	"rentacar-backend/internal/service"
)

type ContractHandler struct {
	contractSvc service.ContractService
}

func NewContractHandler(contractSvc service.ContractService) *ContractHandler {
	return &ContractHandler{contractSvc: contractSvc}
}

func (h *ContractHandler) IssueWalkIn(w http.ResponseWriter, r *http.Request) {
	var req walkInContractRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.contractSvc.IssueWalkInContract(r.Context(), actorFrom(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.contractSvc.GetContract(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContractHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req convertContractRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.contractSvc.ConvertContract(r.Context(), actorFrom(r.Context()), id, req.Evidence.toEvidence())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// EvidenceUploadURL hands the signing tablet a presigned upload link
func (h *ContractHandler) EvidenceUploadURL(w http.ResponseWriter, r *http.Request) {
	var req evidenceUploadRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ticket, err := h.contractSvc.EvidenceUploadURL(r.Context(), req.evidenceKind(), req.Filename)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
}
