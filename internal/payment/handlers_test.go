package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eventku-checkout/internal/session"
	"github.com/noah-isme/eventku-checkout/internal/ticketing"
)

type fakeUpstream struct {
	tx            ticketing.Transaction
	txErr         error
	proofErr      error
	proofFilename string
	proofContent  []byte
}

func (f *fakeUpstream) Transaction(ctx context.Context, id int64) (ticketing.Transaction, error) {
	return f.tx, f.txErr
}

func (f *fakeUpstream) SubmitProof(ctx context.Context, id int64, filename string, file io.Reader) error {
	f.proofFilename = filename
	f.proofContent, _ = io.ReadAll(file)
	return f.proofErr
}

func paymentRouter(h *Handler, s *session.Session) http.Handler {
	r := chi.NewRouter()
	if s != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(session.WithSession(req.Context(), *s)))
			})
		})
	}
	r.Get("/transactions/{id}", h.Get)
	r.Post("/transactions/{id}/proof", h.SubmitProof)
	return r
}

func proofRequest(t *testing.T, path, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("paymentProof", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestGetTransaction(t *testing.T) {
	up := &fakeUpstream{tx: ticketing.Transaction{ID: 9, EventID: 1, Quantity: 2, TotalPrice: 140_000, Status: "WAITING_PAYMENT"}}
	s := session.Session{UserID: "42", Role: session.RoleCustomer, Token: "tok"}
	router := paymentRouter(&Handler{Tickets: up, Logger: zerolog.Nop()}, &s)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transactions/9", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Data ticketing.Transaction `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, int64(140_000), payload.Data.TotalPrice)
}

func TestGetTransactionRemoteErrorPassthrough(t *testing.T) {
	up := &fakeUpstream{txErr: &ticketing.RemoteError{Status: http.StatusNotFound, Message: "Transaction not found"}}
	s := session.Session{UserID: "42", Role: session.RoleCustomer, Token: "tok"}
	router := paymentRouter(&Handler{Tickets: up, Logger: zerolog.Nop()}, &s)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transactions/9", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "Transaction not found", payload.Error.Message)
}

func TestSubmitProofForwardsFile(t *testing.T) {
	up := &fakeUpstream{}
	s := session.Session{UserID: "42", Role: session.RoleCustomer, Token: "tok"}
	router := paymentRouter(&Handler{Tickets: up, Logger: zerolog.Nop()}, &s)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, proofRequest(t, "/transactions/9/proof", "bukti.png", []byte("png-bytes")))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, "bukti.png", up.proofFilename)
	require.Equal(t, []byte("png-bytes"), up.proofContent)
}

func TestSubmitProofRequiresCustomerRole(t *testing.T) {
	up := &fakeUpstream{}
	s := session.Session{UserID: "7", Role: session.RoleOrganizer, Token: "tok"}
	router := paymentRouter(&Handler{Tickets: up, Logger: zerolog.Nop()}, &s)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, proofRequest(t, "/transactions/9/proof", "bukti.png", []byte("x")))

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Empty(t, up.proofFilename)
}

func TestSubmitProofRequiresFile(t *testing.T) {
	up := &fakeUpstream{}
	s := session.Session{UserID: "42", Role: session.RoleCustomer, Token: "tok"}
	router := paymentRouter(&Handler{Tickets: up, Logger: zerolog.Nop()}, &s)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/transactions/9/proof", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
