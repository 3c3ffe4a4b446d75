package handlers

import (
	"log/slog"
	"net/http"

	"github.com/diewo77/crm-documents/httpx"
	"github.com/diewo77/crm-documents/internal/logging"
	"github.com/diewo77/crm-documents/internal/services"
)

type InvoiceHandler struct {
	Svc *services.InvoiceService
	Log *slog.Logger
}

func NewInvoiceHandler(svc *services.InvoiceService, log *slog.Logger) *InvoiceHandler {
	if log == nil {
		log = logging.Discard()
	}
	return &InvoiceHandler{Svc: svc, Log: log}
}

// List: GET /api/invoices?status=&contactId=
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
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

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	inv, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := httpx.Decode(r, &req); err != nil {
		badRequest(w, r, "invalid_json")
		return
	}
	inv, err := h.Svc.Create(r.Context(), req.input())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req invoiceRequest
	if err := httpx.Decode(r, &req); err != nil {
		badRequest(w, r, "invalid_json")
		return
	}
	inv, err := h.Svc.Update(r.Context(), id, req.input())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// PDF: GET /api/invoices/{id}/pdf
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	inv, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	b, err := h.Svc.Render(inv)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.Attachment(w, "application/pdf", inv.Number+".pdf", b)
}

// Import: GET /api/proposals/{id}/invoice returns an unsaved invoice
// prefilled from the proposal.
func (h *InvoiceHandler) Import(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	draft, err := h.Svc.ImportFromProposal(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, draft)
}

// Revenue: GET /api/invoices/revenue sums paid invoices.
func (h *InvoiceHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	total, err := h.Svc.Revenue(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"revenue": total})
}
