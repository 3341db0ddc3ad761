package payment

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eventku-checkout/internal/checkout"
	"github.com/noah-isme/eventku-checkout/internal/common"
	"github.com/noah-isme/eventku-checkout/internal/session"
	"github.com/noah-isme/eventku-checkout/internal/ticketing"
)

// Upstream is the slice of the ticketing client the payment page needs.
type Upstream interface {
	Transaction(ctx context.Context, id int64) (ticketing.Transaction, error)
	SubmitProof(ctx context.Context, id int64, filename string, file io.Reader) error
}

// Handler exposes the payment-confirmation surface: fetch the transaction the
// checkout redirect points at and upload the transfer proof.
type Handler struct {
	Tickets      Upstream
	Logger       zerolog.Logger
	MaxProofSize int64
}

// Get handles GET /transactions/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := transactionID(r)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid transaction id", nil)
		return
	}
	tx, err := h.Tickets.Transaction(r.Context(), id)
	if err != nil {
		checkout.WriteUpstreamError(w, err)
		return
	}
	common.Data(w, http.StatusOK, tx)
}

// SubmitProof handles POST /transactions/{id}/proof. Customer-only: the proof
// belongs to the purchase, not to the organizer viewing it. The file is
// forwarded as-is; verification is the upstream's job.
func (h *Handler) SubmitProof(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok || !s.IsCustomer() {
		common.JSONError(w, http.StatusForbidden, common.CodeForbidden, "only customers can submit payment proof", nil)
		return
	}
	id, err := transactionID(r)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid transaction id", nil)
		return
	}

	maxSize := h.MaxProofSize
	if maxSize <= 0 {
		maxSize = 5 << 20
	}
	if err := r.ParseMultipartForm(maxSize); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "payment proof file is required", nil)
		return
	}
	file, header, err := r.FormFile("paymentProof")
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "payment proof file is required", nil)
		return
	}
	defer func() { _ = file.Close() }()

	if err := h.Tickets.SubmitProof(r.Context(), id, header.Filename, file); err != nil {
		checkout.WriteUpstreamError(w, err)
		return
	}
	h.Logger.Info().Int64("transaction_id", id).Str("user_id", s.UserID).Msg("payment proof submitted")
	common.Data(w, http.StatusAccepted, map[string]any{"transactionId": id, "status": "WAITING_CONFIRMATION"})
}

func transactionID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
