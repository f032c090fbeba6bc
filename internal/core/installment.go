package core

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseDraft is the caller's input for recording a purchase. A draft
// with Installments > 1 expands into one transaction per installment.
type PurchaseDraft struct {
	Date          Date
	Type          TransactionType
	PaymentMethod PaymentMethod
	Person        Person
	Category      string
	Description   string
	Value         Money // total purchase amount
	Competency    Competency
	CreditCardID  string
	Installments  int
}

func (d PurchaseDraft) Validate() error {
	if err := d.Date.Validate(); err != nil {
		return err
	}
	if !d.Type.Valid() {
		return ErrInvalidType
	}
	if !d.PaymentMethod.Valid() {
		return ErrInvalidPayment
	}
	if !d.Person.Valid() {
		return ErrInvalidPerson
	}
	if d.Category == "" {
		return ErrEmptyCategory
	}
	if d.Description == "" {
		return ErrEmptyDescription
	}
	if err := d.Value.Validate(); err != nil {
		return err
	}
	if d.PaymentMethod == Credit && d.CreditCardID == "" {
		return ErrMissingCreditCard
	}
	if d.Installments < 1 {
		return ErrInvalidInstallment
	}
	return nil
}

// ExpandPurchase turns one purchase draft into its final transaction
// records.
//
// A single-installment draft produces one record under the draft's own
// competency (defaulting to the purchase month when unset). A draft
// with N > 1 installments produces N records, one per consecutive
// calendar month starting at the purchase month, sharing an
// installment group id.
//
// The per-installment value is the total divided by N, truncated to
// the cent; the last installment absorbs the remainder so the group
// always sums exactly to the original amount.
func ExpandPurchase(d PurchaseDraft, now time.Time) ([]Transaction, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	base := Transaction{
		Date:              d.Date,
		Type:              d.Type,
		PaymentMethod:     d.PaymentMethod,
		Person:            d.Person,
		Category:          d.Category,
		Description:       d.Description,
		CreditCardID:      d.CreditCardID,
		InstallmentNumber: 1,
		TotalInstallments: 1,
		CreatedAt:         now,
	}

	if d.Installments == 1 {
		single := base
		single.ID = uuid.NewString()
		single.Value = d.Value
		single.Competency = d.Competency
		if single.Competency == "" {
			single.Competency = CompetencyOf(d.Date.Time)
		}
		return []Transaction{single}, nil
	}

	n := int64(d.Installments)
	per := d.Value.Cents / n
	if per == 0 {
		// A split finer than one cent per installment is not representable.
		return nil, ErrInvalidInstallment
	}
	remainder := d.Value.Cents - per*n
	groupID := uuid.NewString()
	start := CompetencyOf(d.Date.Time)

	out := make([]Transaction, 0, d.Installments)
	for i := 0; i < d.Installments; i++ {
		tx := base
		tx.ID = uuid.NewString()
		tx.Value = Money{Cents: per}
		if i == d.Installments-1 {
			tx.Value.Cents += remainder
		}
		tx.Competency = start.AddMonths(i)
		tx.InstallmentNumber = i + 1
		tx.TotalInstallments = d.Installments
		tx.InstallmentGroupID = groupID
		out = append(out, tx)
	}
	return out, nil
}
