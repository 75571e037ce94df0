package payment

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CreateBillRequest is the input of the gateway's create_bill action
type CreateBillRequest struct {
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone,omitempty"`
	Amount      decimal.Decimal `json:"-"`
	Description string          `json:"description"`
	RedirectURL string          `json:"redirect_url"`
	Reference   string          `json:"reference,omitempty"`
}

// Validate checks the request before it leaves the process
func (r CreateBillRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return errInvalidBillAmount
	}
	if r.Name == "" {
		return errMissingBillName
	}
	if r.RedirectURL == "" {
		return errMissingRedirect
	}
	return nil
}

// AmountInSen converts the ringgit amount to the integer sen the gateway expects
func (r CreateBillRequest) AmountInSen() int64 {
	return r.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Bill is a created gateway bill
type Bill struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// BillStatus is the gateway's settlement answer for a bill
type BillStatus struct {
	BillID string          `json:"bill_id"`
	Paid   bool            `json:"paid"`
	Raw    json.RawMessage `json:"-"`
}

// Gateway is the online payment gateway function
type Gateway interface {
	// CreateBill creates a bill and returns its id and checkout URL
	CreateBill(ctx context.Context, req CreateBillRequest) (*Bill, error)

	// VerifyBill asks the gateway whether a bill has been paid
	VerifyBill(ctx context.Context, billID string) (*BillStatus, error)
}

// ReceiptStorage stores uploaded receipts and documents
type ReceiptStorage interface {
	// Upload stores data under key
	Upload(ctx context.Context, key string, data []byte, contentType string) error

	// PublicURL returns the URL under which key is served
	PublicURL(key string) string
}

// Locker serializes work on a key across processes
type Locker interface {
	// Acquire takes the lock or returns ErrVerificationInProgress when it is held.
	// The returned func releases it.
	Acquire(ctx context.Context, key string) (release func(), err error)
}
