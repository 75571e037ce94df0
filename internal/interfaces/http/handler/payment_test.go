package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	paymentapp "github.com/webdevsha/permitak/internal/application/payment"
	"github.com/webdevsha/permitak/internal/domain/rental"
	"github.com/webdevsha/permitak/internal/infrastructure/auth"
)

type paymentFixture struct {
	env        *testEnv
	tenant     *rental.Tenant
	assignment *rental.Assignment
	userID     uuid.UUID
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	env := newTestEnv(t)
	h := NewPaymentHandler(env.tenants, env.assignments, env.reconciler, 1024)
	env.engine.GET("/me/rentals", h.MyRentals)
	env.engine.POST("/me/payments/manual", h.SubmitManual)
	env.engine.POST("/me/payments/gateway", h.InitiateGateway)
	env.engine.GET("/payments/return", h.Return)
	env.engine.GET("/payments/pending", h.Pending)
	env.engine.POST("/payments/:id/review", h.Review)

	f := &paymentFixture{env: env, userID: uuid.New()}
	loc := env.seedLocation("Pasar Malam Bangi", nil)
	f.tenant = env.seedTenant("Ahmad Albab", "ahmad@example.com", f.userID.String())
	f.assignment = env.seedAssignment(f.tenant, loc, rental.RateTypeKhemah, "A1")
	env.as(auth.RoleTenant, f.userID, "ahmad@example.com")
	return f
}

func (f *paymentFixture) uploadManual(t *testing.T, amount string, receipt []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("assignment_id", f.assignment.ID.String()))
	require.NoError(t, mw.WriteField("amount", amount))
	if receipt != nil {
		part, err := mw.CreateFormFile("receipt", "resit.png")
		require.NoError(t, err)
		_, err = part.Write(receipt)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/me/payments/manual", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	f.env.engine.ServeHTTP(w, req)
	return w
}

func TestPaymentHandler_MyRentals_NotActivated(t *testing.T) {
	f := newPaymentFixture(t)
	f.env.as(auth.RoleTenant, uuid.New(), "stranger@example.com")

	w := f.env.do(http.MethodGet, "/me/rentals", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentHandler_MyRentals_EmailFallback(t *testing.T) {
	f := newPaymentFixture(t)
	f.env.as(auth.RoleTenant, uuid.New(), "Ahmad@Example.com")

	w := f.env.do(http.MethodGet, "/me/rentals", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out MyRentals
	decode(t, w, &out)
	assert.Equal(t, f.tenant.ID, out.Tenant.ID)
	require.Len(t, out.Assignments, 1)
	assert.Empty(t, out.Payments)
}

func TestPaymentHandler_SubmitManual_AndReview(t *testing.T) {
	f := newPaymentFixture(t)

	w := f.uploadManual(t, "45.50", []byte("\x89PNG\r\n\x1a\nfake"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var pair paymentapp.PaymentPair
	decode(t, w, &pair)
	assert.Equal(t, "pending", pair.Payment.State)
	assert.Equal(t, "pending", pair.Transaction.Status)
	assert.True(t, pair.Payment.Amount.Equal(decimal.RequireFromString("45.50")))
	assert.Contains(t, pair.Payment.ReceiptURL, "https://files.test/receipts/"+f.tenant.ID.String())
	assert.Equal(t, pair.Payment.ReceiptURL, pair.Transaction.ReceiptURL)

	f.env.as(auth.RoleAdmin, uuid.New(), "admin@example.com")
	w = f.env.do(http.MethodGet, "/payments/pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []paymentapp.PaymentResponse
	decode(t, w, &pending)
	require.Len(t, pending, 1)

	w = f.env.do(http.MethodPost, "/payments/"+pair.Payment.ID.String()+"/review", map[string]string{"decision": "maybe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.env.do(http.MethodPost, "/payments/"+pair.Payment.ID.String()+"/review", map[string]string{"decision": "approve"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var reviewed paymentapp.PaymentResponse
	decode(t, w, &reviewed)
	assert.Equal(t, "approved", reviewed.State)
	assert.NotNil(t, reviewed.ReviewedBy)

	w = f.env.do(http.MethodPost, "/payments/"+pair.Payment.ID.String()+"/review", map[string]string{"decision": "reject"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPaymentHandler_SubmitManual_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		receipt []byte
	}{
		{name: "missing receipt", amount: "10"},
		{name: "empty receipt", amount: "10", receipt: []byte{}},
		{name: "oversized receipt", amount: "10", receipt: bytes.Repeat([]byte("x"), 2048)},
		{name: "zero amount", amount: "0", receipt: []byte("img")},
		{name: "garbage amount", amount: "RM10", receipt: []byte("img")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture(t)

			w := f.uploadManual(t, tt.amount, tt.receipt)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VALIDATION_ERROR", decode(t, w, nil).Error.Code)
		})
	}
}

func TestPaymentHandler_GatewayFlow(t *testing.T) {
	f := newPaymentFixture(t)

	w := f.env.do(http.MethodPost, "/me/payments/gateway", map[string]any{
		"assignment_id": f.assignment.ID,
		"amount":        "50",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var checkout paymentapp.GatewayCheckout
	decode(t, w, &checkout)
	assert.Equal(t, "awaiting_gateway", checkout.Payment.State)
	assert.NotEmpty(t, checkout.URL)

	w = f.env.do(http.MethodGet, "/payments/return?billplz[id]="+checkout.BillID, nil)
	require.Equal(t, http.StatusPaymentRequired, w.Code, w.Body.String())
	var unpaid paymentapp.VerificationResult
	resp := decode(t, w, &unpaid)
	assert.Equal(t, "PAYMENT_NOT_SETTLED", resp.Error.Code)
	assert.Equal(t, paymentapp.OutcomeUnpaid, unpaid.Outcome)

	f.env.gateway.markPaid(checkout.BillID)

	w = f.env.do(http.MethodGet, "/payments/return?bill_id="+checkout.BillID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var paid paymentapp.VerificationResult
	decode(t, w, &paid)
	assert.Equal(t, paymentapp.OutcomeApproved, paid.Outcome)

	w = f.env.do(http.MethodGet, "/payments/return?bill_id="+checkout.BillID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &paid)
	assert.Equal(t, paymentapp.OutcomeAlreadyRecorded, paid.Outcome)

	w = f.env.do(http.MethodGet, "/payments/return", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var overview MyRentals
	decode(t, w, &overview)
	require.Len(t, overview.Payments, 1)
	assert.Equal(t, "approved", overview.Payments[0].State)
}

func TestPaymentHandler_Return_OtherTenantsBill(t *testing.T) {
	f := newPaymentFixture(t)
	w := f.env.do(http.MethodPost, "/me/payments/gateway", map[string]any{
		"assignment_id": f.assignment.ID,
		"amount":        "50",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var checkout paymentapp.GatewayCheckout
	decode(t, w, &checkout)

	other := uuid.New()
	f.env.seedTenant("Other", "other@example.com", other.String())
	f.env.as(auth.RoleTenant, other, "other@example.com")

	w = f.env.do(http.MethodGet, "/payments/return?bill_id="+checkout.BillID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPaymentHandler_InitiateGateway_ForeignAssignment(t *testing.T) {
	f := newPaymentFixture(t)

	w := f.env.do(http.MethodPost, "/me/payments/gateway", map[string]any{
		"assignment_id": uuid.New(),
		"amount":        "50",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
