package payment

import (
	"errors"

	"github.com/webdevsha/permitak/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// Reconciliation errors
// ---------------------------------------------------------------------------

var (
	// ErrUpload is returned when document storage rejects a receipt upload.
	// Nothing is written to the ledger in that case.
	ErrUpload = shared.NewDomainError("UPLOAD_FAILED", "Receipt upload failed")

	// ErrLedgerWrite is returned when the Transaction insert fails
	ErrLedgerWrite = shared.NewDomainError("LEDGER_WRITE_FAILED", "Could not record the ledger transaction")

	// ErrHistoryWrite is returned when the TenantPayment insert fails
	ErrHistoryWrite = shared.NewDomainError("HISTORY_WRITE_FAILED", "Could not record the payment history")

	// ErrGateway covers network and protocol failures talking to the gateway function
	ErrGateway = shared.NewDomainError("GATEWAY_ERROR", "Payment gateway request failed")

	// ErrNotSettled is returned when the gateway reports the bill as unpaid or cancelled
	ErrNotSettled = shared.NewDomainError("PAYMENT_NOT_SETTLED", "Payment has not been completed")

	// ErrVerificationInProgress is returned when another request holds the bill lock
	ErrVerificationInProgress = shared.NewDomainError("CONCURRENCY_CONFLICT", "Payment verification already in progress")

	ErrPaymentNotFound     = shared.NewNotFoundError("Payment")
	ErrTransactionNotFound = shared.NewNotFoundError("Transaction")
)

// ---------------------------------------------------------------------------
// Gateway adapter errors
// ---------------------------------------------------------------------------

var (
	ErrGatewayNotConfigured   = errors.New("gateway: function URL not configured")
	ErrGatewayUnavailable     = errors.New("gateway: temporarily unavailable")
	ErrGatewayRequestFailed   = errors.New("gateway: request failed")
	ErrGatewayInvalidResponse = errors.New("gateway: invalid response")
)

func newInvalidStateError(message string) error {
	return shared.NewDomainError(shared.ErrInvalidState.Code, message)
}

var (
	errInvalidBillAmount = shared.NewValidationError("Bill amount must be greater than zero")
	errMissingBillName   = shared.NewValidationError("Bill payer name is required")
	errMissingRedirect   = shared.NewValidationError("Bill redirect URL is required")
)
