package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/revrec/internal/adapter/feed"
	"github.com/iho/revrec/internal/adapter/http/dto"
	"github.com/iho/revrec/internal/domain"
	"github.com/iho/revrec/internal/usecase"
)

// PostingService defines the posting operations used by PostingHandler.
type PostingService interface {
	Preview(ctx context.Context, events []domain.Event) (*usecase.PostingOutput, error)
	PostContract(ctx context.Context, input usecase.PostingInput) (*usecase.PostingOutput, error)
	PostContracts(ctx context.Context, inputs []usecase.PostingInput) ([]usecase.BatchResult, error)
}

// PostingHandler handles posting requests.
type PostingHandler struct {
	postingUC PostingService
}

// NewPostingHandler creates a new PostingHandler.
func NewPostingHandler(postingUC PostingService) *PostingHandler {
	return &PostingHandler{postingUC: postingUC}
}

// Preview runs a posting pass over the request events without persisting it.
func (h *PostingHandler) Preview(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeEvents(w, r)
	if !ok {
		return
	}

	out, err := h.postingUC.Preview(r.Context(), doc.DomainEvents())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post events", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PostingFromUseCase(out))
}

// Post posts and persists a contract's full event history.
func (h *PostingHandler) Post(w http.ResponseWriter, r *http.Request) {
	contractID := chi.URLParam(r, "id")
	if contractID == "" {
		writeError(w, http.StatusBadRequest, "missing contract ID", "")
		return
	}

	doc, ok := decodeEvents(w, r)
	if !ok {
		return
	}
	if doc.ContractID != "" && doc.ContractID != contractID {
		writeError(w, http.StatusBadRequest, "contract ID mismatch", "body contract_id "+doc.ContractID+" does not match path")
		return
	}

	out, err := h.postingUC.PostContract(r.Context(), usecase.PostingInput{
		ContractID: contractID,
		Events:     doc.DomainEvents(),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post contract", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PostingFromUseCase(out))
}

// Batch posts several independent contracts in parallel.
func (h *PostingHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchPostingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if len(req.Contracts) == 0 {
		writeError(w, http.StatusBadRequest, "no contracts in batch", "")
		return
	}

	results, err := h.postingUC.PostContracts(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post batch", err.Error())
		return
	}

	resp := dto.BatchFromUseCase(results)
	status := http.StatusCreated
	if resp.Failed > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, resp)
}

func decodeEvents(w http.ResponseWriter, r *http.Request) (*dto.PostingRequest, bool) {
	format, err := requestFormat(r)
	if err != nil {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported content type", err.Error())
		return nil, false
	}

	doc, err := feed.DecodeEventDocument(r.Body, format)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return nil, false
	}

	return doc, true
}
