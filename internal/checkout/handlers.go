package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/eventku-checkout/internal/common"
	"github.com/noah-isme/eventku-checkout/internal/obs"
	"github.com/noah-isme/eventku-checkout/internal/session"
	"github.com/noah-isme/eventku-checkout/internal/ticketing"
)

// OfferSource supplies the event offer and the caller's balances, typically
// the cached offers service.
type OfferSource interface {
	Event(ctx context.Context, id int64) (ticketing.EventOffer, error)
	Balances(ctx context.Context) (ticketing.Balances, error)
}

// Upstream is the slice of the ticketing client the handler needs beyond the
// offer itself.
type Upstream interface {
	TransactionCreator
	Vouchers(ctx context.Context, eventID int64) ([]ticketing.Voucher, error)
}

// Handler exposes checkout submission over HTTP.
type Handler struct {
	Offers  OfferSource
	Tickets Upstream
	Guard   SubmitGuard
	Logger  zerolog.Logger
	Metrics *obs.CheckoutMetrics
}

// Submit handles POST /checkout. The draft arrives as the request body; the
// offer and voucher list are loaded fresh so the upstream's current state
// decides, and a per-user guard rejects a duplicate click that races a
// pending submission.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, common.CodeUnauthorized, "authentication required", nil)
		return
	}

	var draft Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid payload", nil)
		return
	}

	admitted, err := h.Guard.Acquire(r.Context(), s.UserID)
	if err != nil {
		h.Logger.Error().Err(err).Msg("submission guard unavailable")
		admitted = true
	}
	if !admitted {
		h.Metrics.Record(obs.OutcomeDuplicate)
		common.JSONError(w, http.StatusConflict, "SUBMISSION_IN_FLIGHT", "a submission is already in progress", nil)
		return
	}
	defer h.Guard.Release(r.Context(), s.UserID)

	offer, err := h.Offers.Event(r.Context(), draft.EventID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	vouchers, err := h.Tickets.Vouchers(r.Context(), draft.EventID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	balances, err := h.Offers.Balances(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	// The decoded draft is untrusted input: re-run the edit-boundary clamp
	// against the balances the user actually holds before submitting.
	draft.UsePoints(draft.PointsToUse, balances.Points)
	draft.UseCoupon(draft.CouponToUse, balances.Coupon)

	wf := &Workflow{
		Client:  h.Tickets,
		Creds:   session.ContextSource{},
		Logger:  h.Logger,
		Metrics: h.Metrics,
	}
	result, err := wf.Submit(r.Context(), &draft, offer, vouchers)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, result)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var fields FieldErrors
	switch {
	case errors.As(err, &fields):
		common.WriteError(w, common.ValidationError(fields))
	case errors.Is(err, ErrAuthenticationRequired):
		common.JSONError(w, http.StatusUnauthorized, common.CodeUnauthorized, "authentication required", nil)
	case errors.Is(err, ErrSubmissionInFlight):
		common.JSONError(w, http.StatusConflict, "SUBMISSION_IN_FLIGHT", "a submission is already in progress", nil)
	case errors.Is(err, ErrAlreadySucceeded):
		common.JSONError(w, http.StatusConflict, "ALREADY_SUBMITTED", "transaction already created", nil)
	default:
		WriteUpstreamError(w, err)
	}
}

// WriteUpstreamError maps ticketing failures onto the canonical error shape.
// Remote rejections keep the server-provided message verbatim; transport
// failures get a generic retry-prompting message.
func WriteUpstreamError(w http.ResponseWriter, err error) {
	if remote, ok := ticketing.AsRemote(err); ok {
		status := remote.Status
		if status < http.StatusBadRequest || status >= 600 {
			status = http.StatusBadGateway
		}
		common.JSONError(w, status, common.CodeUpstream, remote.Message, nil)
		return
	}
	if ticketing.IsTransport(err) {
		common.JSONError(w, http.StatusServiceUnavailable, common.CodeUnreachable, "ticketing service is unreachable, please try again", nil)
		return
	}
	common.WriteError(w, err)
}
