package handler

import (
	"context"
	"net/http"

	"github.com/iho/revrec/internal/adapter/feed"
	"github.com/iho/revrec/internal/adapter/http/dto"
	"github.com/iho/revrec/internal/domain"
	"github.com/iho/revrec/internal/usecase"
)

// ReconciliationService defines the reconciliation used by ReconciliationHandler.
type ReconciliationService interface {
	Reconcile(ctx context.Context, input usecase.ReconcileInput) (domain.Reconciliation, error)
}

// ReconciliationHandler handles reconciliation requests.
type ReconciliationHandler struct {
	reconciliationUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationUC: reconciliationUC}
}

// Reconcile rolls the request's opening balances forward over its activity.
func (h *ReconciliationHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	format, err := requestFormat(r)
	if err != nil {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported content type", err.Error())
		return
	}

	doc, err := feed.DecodeReconciliation(r.Body, format)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	lines, err := h.reconciliationUC.Reconcile(r.Context(), dto.ReconciliationInput(doc))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromDomain(lines))
}
