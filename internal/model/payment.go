package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentPaid is the only status the desk writes.
const PaymentPaid = "paid"

// Payment records money taken for an appointment. Amount is the tendered
// amount, not the total due.
//
// Fields:
//
//	AppointmentID – appointment the payment settles.
//	Reference     – 10 character code printed on the receipt.
//	PaidAt        – server timestamp of the insert.
type Payment struct {
	ID            uint64          `json:"id"`             // payments.payment_id
	AppointmentID uint64          `json:"appointment_id"` // payments.appointment_id
	PatientID     uint64          `json:"patient_id"`     // payments.patient_id
	Amount        decimal.Decimal `json:"amount"`         // payments.amount
	Method        string          `json:"method"`         // payments.method
	Status        string          `json:"status"`         // payments.status
	Reference     string          `json:"reference_code"` // payments.reference_code
	Remarks       *string         `json:"remarks,omitempty"`
	PaidAt        time.Time       `json:"paid_at"`
}
