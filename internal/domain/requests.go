package domain

// AuthProof carries the authorization evidence supplied with a payment
// request. Exactly one of PIN or BiometricToken is expected; Method records
// which modality the client used.
type AuthProof struct {
	Method         string `json:"method"` // "pin" or "biometric"
	PIN            string `json:"pin,omitempty"`
	BiometricToken string `json:"biometric_token,omitempty"`
}

const (
	AuthMethodPIN       = "pin"
	AuthMethodBiometric = "biometric"
)

// TransferRequest is the DTO for peer-to-peer transfer API requests. The
// recipient is looked up by email, phone or UPI address.
type TransferRequest struct {
	RecipientIdentifier string    `json:"recipient_identifier" validate:"required"`
	Amount              int64     `json:"amount" validate:"required,gt=0"` // in paise
	Note                string    `json:"note,omitempty" validate:"max=200"`
	Auth                AuthProof `json:"auth"`
}

// PaymentRequest is the DTO for merchant/UPI/card/bill payments.
type PaymentRequest struct {
	Type                TransactionType   `json:"type" validate:"required"`
	Amount              int64             `json:"amount" validate:"required,gt=0"`
	CounterpartName     string            `json:"counterpart_name,omitempty"`
	CounterpartAddress  string            `json:"counterpart_address" validate:"required"`
	PaymentMethod       PaymentMethod     `json:"payment_method" validate:"required"`
	MethodDetails       map[string]string `json:"method_details,omitempty"`
	ExternalReferenceID string            `json:"external_reference_id,omitempty"`
	Category            string            `json:"category,omitempty"`
	Description         string            `json:"description,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
	Auth                AuthProof         `json:"auth"`
}

// RechargeRequest is the DTO for mobile/DTH recharges.
type RechargeRequest struct {
	Operator string    `json:"operator" validate:"required"`
	Plan     string    `json:"plan,omitempty"`
	Target   string    `json:"target" validate:"required"` // phone or subscriber id
	Amount   int64     `json:"amount" validate:"required,gt=0"`
	Auth     AuthProof `json:"auth"`
}

// AddMoneyRequest is the DTO for loading funds into the wallet from an
// external source. The external reference makes retries idempotent.
type AddMoneyRequest struct {
	Amount              int64             `json:"amount" validate:"required,gt=0"`
	PaymentMethod       PaymentMethod     `json:"payment_method" validate:"required"`
	MethodDetails       map[string]string `json:"method_details,omitempty"`
	ExternalReferenceID string            `json:"external_reference_id,omitempty"`
}

// WithdrawalRequest is the DTO for moving wallet funds out to a bank account.
type WithdrawalRequest struct {
	Amount             int64     `json:"amount" validate:"required,gt=0"`
	DestinationAccount string    `json:"destination_account" validate:"required"`
	Auth               AuthProof `json:"auth"`
}

// SortField enumerates the columns a statement may be ordered by.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByAmount    SortField = "amount"
	SortByUpdatedAt SortField = "updatedAt"
)

// ListFilter narrows and pages a statement query. Zero values mean
// "no constraint". Limit is capped by the store.
type ListFilter struct {
	Type          TransactionType
	Status        Status
	PaymentMethod PaymentMethod
	Direction     Direction
	Category      string
	DateFrom      string // RFC3339 or yyyy-mm-dd, inclusive
	DateTo        string
	MinAmount     int64
	MaxAmount     int64
	SortBy        SortField
	SortDesc      bool
	Page          int
	Limit         int
}
