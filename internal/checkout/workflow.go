package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/noah-isme/eventku-checkout/internal/obs"
	"github.com/noah-isme/eventku-checkout/internal/session"
	"github.com/noah-isme/eventku-checkout/internal/ticketing"
)

// State enumerates the submission lifecycle. Succeeded is terminal: the caller
// navigates to the payment resource. A failure returns the workflow to Idle so
// the user can adjust the draft and try again.
type State int32

// Workflow states.
const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	default:
		return "unknown"
	}
}

var (
	// ErrAuthenticationRequired means no customer session is available. The
	// workflow fails fast and issues zero network requests.
	ErrAuthenticationRequired = errors.New("checkout: authentication required")
	// ErrSubmissionInFlight rejects a duplicate submit while one is pending.
	ErrSubmissionInFlight = errors.New("checkout: submission already in flight")
	// ErrAlreadySucceeded rejects submits after the terminal success state.
	ErrAlreadySucceeded = errors.New("checkout: transaction already created")
)

// TransactionCreator is the slice of the ticketing client the workflow needs.
type TransactionCreator interface {
	CreateTransaction(ctx context.Context, req ticketing.CreateTransactionRequest) (ticketing.CreatedTransaction, error)
}

// Result carries the created transaction id and the payment resource the
// caller should navigate to.
type Result struct {
	TransactionID int64  `json:"transactionId"`
	PaymentPath   string `json:"paymentUrl"`
}

// Workflow orchestrates one checkout submission: precondition checks, draft
// validation, payload construction and the single-shot upstream call. It owns
// exactly one draft's lifecycle; construct a new workflow per checkout
// session.
type Workflow struct {
	Client  TransactionCreator
	Creds   session.TokenSource
	Logger  zerolog.Logger
	Metrics *obs.CheckoutMetrics

	state atomic.Int32
}

// State reports the current lifecycle state.
func (w *Workflow) State() State {
	return State(w.state.Load())
}

// Submit runs the submission end to end. Concurrent calls while a request is
// in flight return ErrSubmissionInFlight without touching the network, so a
// double-click can never create two transactions. All failures are terminal
// for this attempt and none are retried automatically; the draft is left
// untouched for the user to adjust and resubmit.
func (w *Workflow) Submit(ctx context.Context, d *Draft, offer ticketing.EventOffer, vouchers []ticketing.Voucher) (Result, error) {
	if !w.begin() {
		switch w.State() {
		case StateSucceeded:
			return Result{}, ErrAlreadySucceeded
		default:
			w.Metrics.Record(obs.OutcomeDuplicate)
			return Result{}, ErrSubmissionInFlight
		}
	}

	s, err := w.Creds.Session(ctx)
	if err != nil || !s.IsCustomer() {
		w.state.Store(int32(StateIdle))
		w.Metrics.Record(obs.OutcomeUnauthorized)
		return Result{}, ErrAuthenticationRequired
	}

	if fields := d.Validate(offer, vouchers); fields != nil {
		w.state.Store(int32(StateIdle))
		w.Metrics.Record(obs.OutcomeValidation)
		return Result{}, fields
	}

	created, err := w.Client.CreateTransaction(ctx, ticketing.CreateTransactionRequest{
		EventID:       d.EventID,
		Quantity:      d.Quantity,
		VoucherID:     d.VoucherID,
		PointsToUse:   d.PointsToUse,
		CouponNominal: d.CouponToUse,
	})
	if err != nil {
		w.state.Store(int32(StateIdle))
		w.recordFailure(err)
		return Result{}, err
	}

	w.state.Store(int32(StateSucceeded))
	w.Metrics.Record(obs.OutcomeSucceeded)
	w.Logger.Info().Int64("event_id", d.EventID).Int64("transaction_id", created.ID).Str("user_id", s.UserID).Msg("transaction created")
	return Result{
		TransactionID: created.ID,
		PaymentPath:   fmt.Sprintf("/payment/%d", created.ID),
	}, nil
}

// begin moves Idle to Submitting. Failures store Idle back, so a failed
// attempt leaves the workflow submittable.
func (w *Workflow) begin() bool {
	return w.state.CompareAndSwap(int32(StateIdle), int32(StateSubmitting))
}

func (w *Workflow) recordFailure(err error) {
	if remote, ok := ticketing.AsRemote(err); ok {
		w.Metrics.Record(obs.OutcomeRejected)
		w.Logger.Info().Int("status", remote.Status).Str("message", remote.Message).Msg("transaction rejected upstream")
		return
	}
	if ticketing.IsTransport(err) {
		w.Metrics.Record(obs.OutcomeUnreachable)
		w.Logger.Warn().Err(err).Msg("transaction submission failed")
		return
	}
	w.Metrics.Record(obs.OutcomeUnreachable)
	w.Logger.Warn().Err(err).Msg("transaction submission failed")
}
