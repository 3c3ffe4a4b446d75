package handlers

import (
	"log/slog"
	"net/http"

	"github.com/diewo77/crm-documents/httpx"
	"github.com/diewo77/crm-documents/internal/logging"
	"github.com/diewo77/crm-documents/internal/services"
)

type ProposalHandler struct {
	Svc *services.ProposalService
	Log *slog.Logger
}

func NewProposalHandler(svc *services.ProposalService, log *slog.Logger) *ProposalHandler {
	if log == nil {
		log = logging.Discard()
	}
	return &ProposalHandler{Svc: svc, Log: log}
}

// List: GET /api/proposals?status=&contactId=
func (h *ProposalHandler) List(w http.ResponseWriter, r *http.Request) {
	contactID, ok := queryID(r, "contactId")
	if !ok {
		badRequest(w, r, "invalid_id")
		return
	}
	list, err := h.Svc.List(r.Context(), services.ListFilter{Status: r.URL.Query().Get("status"), ContactID: contactID})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *ProposalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProposalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req proposalRequest
	if err := httpx.Decode(r, &req); err != nil {
		badRequest(w, r, "invalid_json")
		return
	}
	p, err := h.Svc.Create(r.Context(), req.input())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *ProposalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req proposalRequest
	if err := httpx.Decode(r, &req); err != nil {
		badRequest(w, r, "invalid_json")
		return
	}
	p, err := h.Svc.Update(r.Context(), id, req.input())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProposalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	deleted(w)
}

// PDF: GET /api/proposals/{id}/pdf
func (h *ProposalHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	b, err := h.Svc.Render(p)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.Attachment(w, "application/pdf", p.Number+".pdf", b)
}
