package offers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/eventku-checkout/internal/checkout"
	"github.com/noah-isme/eventku-checkout/internal/common"
	"github.com/noah-isme/eventku-checkout/internal/pricing"
	"github.com/noah-isme/eventku-checkout/internal/session"
	"github.com/noah-isme/eventku-checkout/internal/ticketing"
)

// Handler exposes the offer and quote endpoints.
type Handler struct {
	Svc *Service
}

type quoteResponse struct {
	Draft     checkout.Draft      `json:"draft"`
	Breakdown pricing.Breakdown   `json:"breakdown"`
	Vouchers  []ticketing.Voucher `json:"vouchers,omitempty"`
	Balances  ticketing.Balances  `json:"balances"`
}

// Event handles GET /events/{id} and returns the cached offer.
func (h *Handler) Event(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid event id", nil)
		return
	}
	offer, err := h.Svc.Event(r.Context(), id)
	if err != nil {
		checkout.WriteUpstreamError(w, err)
		return
	}
	common.Data(w, http.StatusOK, offer)
}

// Quote handles GET /events/{id}/quote. Every call recomputes the breakdown
// from scratch against the caller's current balances: quantity, points,
// coupon and voucherId arrive as query parameters and the accepted (clamped)
// draft values are echoed back, so the form can display exactly what was
// applied. Unauthenticated callers get a quote without discounts.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid event id", nil)
		return
	}
	offer, err := h.Svc.Event(r.Context(), id)
	if err != nil {
		checkout.WriteUpstreamError(w, err)
		return
	}

	var (
		vouchers []ticketing.Voucher
		balances ticketing.Balances
	)
	if _, ok := session.FromContext(r.Context()); ok {
		vouchers, err = h.Svc.Vouchers(r.Context(), id)
		if err != nil {
			checkout.WriteUpstreamError(w, err)
			return
		}
		balances, err = h.Svc.Balances(r.Context())
		if err != nil {
			checkout.WriteUpstreamError(w, err)
			return
		}
	}

	draft := checkout.NewDraft(id)
	draft.SetQuantity(common.QueryInt(r, "quantity", 1))
	draft.UsePoints(common.QueryInt64(r, "points", 0), balances.Points)
	draft.UseCoupon(common.QueryInt64(r, "coupon", 0), balances.Coupon)
	if raw := r.URL.Query().Get("voucherId"); raw != "" {
		if voucherID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			draft.SelectVoucher(&voucherID)
		}
	}

	common.Data(w, http.StatusOK, quoteResponse{
		Draft:     *draft,
		Breakdown: draft.Breakdown(offer, vouchers, balances),
		Vouchers:  vouchers,
		Balances:  balances,
	})
}

func eventID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
