package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

const (
	Credit          PaymentMethod = "credit"
	Debit           PaymentMethod = "debit"
	Cash            PaymentMethod = "cash"
	InstantTransfer PaymentMethod = "instant_transfer"
)

const (
	PersonPrimary Person = "primary"
	PersonPartner Person = "partner"
	PersonShared  Person = "shared"
)

type (
	TransactionType string

	PaymentMethod string

	Person string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64 `json:"cents"`
	}

	// Transaction is a single ledger record. Records are never updated
	// in place; an edit is a delete followed by a recreate.
	Transaction struct {
		ID                 string          `json:"id"`
		Date               Date            `json:"date"`
		Type               TransactionType `json:"type"`
		PaymentMethod      PaymentMethod   `json:"paymentMethod"`
		Person             Person          `json:"person"`
		Category           string          `json:"category"`
		Description        string          `json:"description"`
		Value              Money           `json:"value"`
		Competency         Competency      `json:"competency"`
		CreditCardID       string          `json:"creditCardId,omitempty"`
		InstallmentNumber  int             `json:"installmentNumber"`
		TotalInstallments  int             `json:"totalInstallments"`
		InstallmentGroupID string          `json:"installmentGroupId,omitempty"`
		CreatedAt          time.Time       `json:"createdAt"`
	}

	// Budget is the allocated ceiling for one category/person/competency.
	// Uniqueness of the (competency, category, person) key is not
	// enforced; duplicates all count toward allocated totals.
	Budget struct {
		ID         string     `json:"id"`
		Competency Competency `json:"competency"`
		Category   string     `json:"category"`
		Person     Person     `json:"person"`
		Amount     Money      `json:"amount"`
		CreatedAt  time.Time  `json:"createdAt"`
	}

	CreditCard struct {
		ID         string    `json:"id"`
		Name       string    `json:"name"`
		Owner      Person    `json:"owner"`
		ClosingDay int       `json:"closingDay"`
		DueDay     int       `json:"dueDay"`
		Limit      Money     `json:"limit"`
		CreatedAt  time.Time `json:"createdAt"`
	}

	Deposit struct {
		ID     string `json:"id"`
		Amount Money  `json:"amount"`
		Date   Date   `json:"date"`
	}

	// SavingsGoal tracks deposits toward a target amount. CurrentAmount
	// always equals the sum of Deposits; deposits are append-only.
	SavingsGoal struct {
		ID            string    `json:"id"`
		Name          string    `json:"name"`
		TargetAmount  Money     `json:"targetAmount"`
		CurrentAmount Money     `json:"currentAmount"`
		Deadline      Date      `json:"deadline"`
		Owner         Person    `json:"owner"`
		Description   string    `json:"description"`
		Deposits      []Deposit `json:"deposits"`
		CreatedAt     time.Time `json:"createdAt"`
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyDescription    = errors.New("empty description")
	ErrEmptyCategory       = errors.New("empty category")
	ErrEmptyName           = errors.New("empty name")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidPayment      = errors.New("invalid payment method")
	ErrInvalidPerson       = errors.New("invalid person")
	ErrMissingCreditCard   = errors.New("credit payment requires a credit card")
	ErrInvalidInstallment  = errors.New("invalid installment numbering")
	ErrInvalidDay          = errors.New("invalid day of month")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrMonthClosed         = errors.New("competency is closed")
	ErrMonthAlreadyClosed  = errors.New("competency is already closed")
	ErrNotFound            = errors.New("not found")
	ErrDepositNonPositive  = errors.New("deposit amount must be positive")
	ErrInvalidTargetAmount = errors.New("invalid target amount")
)

func (t TransactionType) Valid() bool {
	return t == Expense || t == Income
}

func (p PaymentMethod) Valid() bool {
	switch p {
	case Credit, Debit, Cash, InstantTransfer:
		return true
	}
	return false
}

func (p Person) Valid() bool {
	switch p {
	case PersonPrimary, PersonPartner, PersonShared:
		return true
	}
	return false
}

// People returns the fixed person set in a stable order.
func People() []Person {
	return []Person{PersonPrimary, PersonPartner, PersonShared}
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// IsEmpty reports whether the date is unset (used for optional deadlines).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m minus o. The result may be negative.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if !t.PaymentMethod.Valid() {
		return ErrInvalidPayment
	}
	if !t.Person.Valid() {
		return ErrInvalidPerson
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if err := t.Value.Validate(); err != nil {
		return err
	}
	if err := t.Competency.Validate(); err != nil {
		return err
	}
	if t.PaymentMethod == Credit && t.CreditCardID == "" {
		return ErrMissingCreditCard
	}
	if t.InstallmentNumber < 1 || t.TotalInstallments < 1 || t.InstallmentNumber > t.TotalInstallments {
		return ErrInvalidInstallment
	}
	return nil
}

func (b Budget) Validate() error {
	if err := b.Competency.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if !b.Person.Valid() {
		return ErrInvalidPerson
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Owner.Valid() {
		return ErrInvalidPerson
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 || c.DueDay < 1 || c.DueDay > 31 {
		return ErrInvalidDay
	}
	if err := c.Limit.Validate(); err != nil {
		return err
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidTargetAmount
	}
	if !g.Owner.Valid() {
		return ErrInvalidPerson
	}
	return nil
}
