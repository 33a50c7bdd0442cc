package cgt

import (
	"errors"
	"fmt"

	"github.com/etnz/cgt/date"
	"github.com/shopspring/decimal"
)

// CommandType is a typed string for identifying ledger commands.
type CommandType string

// Command types used for identifying transactions.
const (
	CmdBuy      CommandType = "buy"
	CmdSell     CommandType = "sell"
	CmdSplit    CommandType = "split"
	CmdDividend CommandType = "dividend"
	CmdInterest CommandType = "interest"
	CmdDeposit  CommandType = "deposit"
	CmdWithdraw CommandType = "withdraw"
)

// Transaction defines the common interface for all the events recorded in the ledger.
type Transaction interface {
	What() CommandType // What returns the command type of the transaction (e.g., "buy", "sell").
	When() date.Date   // When returns the date on which the transaction occurred.
	Validate() error
}

type baseCmd struct {
	Command CommandType `json:"command"`        // Command specifies the type of transaction (e.g., "buy", "sell").
	Date    date.Date   `json:"date"`           // Date is the date when the transaction took place.
	Memo    string      `json:"memo,omitempty"` // Memo is an optional note, often the broker's reference.
}

// What returns the command name for the transaction.
func (t baseCmd) What() CommandType { return t.Command }

// When returns the date of the transaction.
func (t baseCmd) When() date.Date { return t.Date }

// MarshalJSON implements the json.Marshaler interface for baseCmd.
func (t baseCmd) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", t.Command)
	w.Append("date", t.Date)
	w.Optional("memo", t.Memo)
	return w.MarshalJSON()
}

func (t baseCmd) validate() error {
	if t.Date.IsZero() {
		return errors.New("date is missing")
	}
	return nil
}

// secCmd is a component for security-based transactions.
type secCmd struct {
	baseCmd
	Security Security
}

// MarshalJSON implements the json.Marshaler interface for secCmd.
func (t secCmd) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.EmbedFrom(t.Security)
	return w.MarshalJSON()
}

func (t secCmd) validate() error {
	if err := t.baseCmd.validate(); err != nil {
		return err
	}
	if t.Security.ISIN == "" {
		return errors.New("security ISIN is missing")
	}
	if err := ValidateISIN(t.Security.ISIN); err != nil {
		return fmt.Errorf("invalid ISIN %q: %w", t.Security.ISIN, err)
	}
	return nil
}

// orderCmd holds the fields common to buy and sell orders.
type orderCmd struct {
	secCmd
	Quantity Quantity        // Quantity is the number of shares, always positive.
	Amount   Money           // Amount is the order value before fees.
	Fees     Fees            // Fees are in the Amount currency.
	Rate     decimal.Decimal // Rate optionally overrides the exchange rate, in units per £1.
}

// MarshalJSON implements the json.Marshaler interface for orders.
func (t orderCmd) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.secCmd)
	w.Append("quantity", t.Quantity)
	w.EmbedFrom(t.Amount)
	if !t.Fees.IsZero() {
		w.Append("fees", t.Fees)
	}
	if !t.Rate.IsZero() {
		w.Append("rate", t.Rate)
	}
	return w.MarshalJSON()
}

// Validate checks the order fields.
func (t orderCmd) Validate() error {
	if err := t.validate(); err != nil {
		return fmt.Errorf("invalid %s on %s: %w", t.Command, t.Date, err)
	}
	return nil
}

func (t orderCmd) validate() error {
	if err := t.secCmd.validate(); err != nil {
		return err
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("quantity must be positive, got %s", t.Quantity)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("amount cannot be negative, got %s", t.Amount)
	}
	if err := ValidateCurrency(t.Amount.Currency()); err != nil {
		return err
	}
	if !t.Fees.validate() {
		return errors.New("fees cannot be negative")
	}
	if t.Rate.IsNegative() {
		return fmt.Errorf("rate cannot be negative, got %s", t.Rate)
	}
	return nil
}

// Buy is the acquisition of a quantity of a security.
type Buy struct{ orderCmd }

// NewBuy creates a new Buy transaction.
func NewBuy(day date.Date, sec Security, quantity Quantity, amount Money, fees Fees) Buy {
	return Buy{orderCmd{
		secCmd:   secCmd{baseCmd: baseCmd{Command: CmdBuy, Date: day}, Security: sec},
		Quantity: quantity,
		Amount:   amount,
		Fees:     fees,
	}}
}

// Sell is the disposal of a quantity of a security.
type Sell struct{ orderCmd }

// NewSell creates a new Sell transaction.
func NewSell(day date.Date, sec Security, quantity Quantity, amount Money, fees Fees) Sell {
	return Sell{orderCmd{
		secCmd:   secCmd{baseCmd: baseCmd{Command: CmdSell, Date: day}, Security: sec},
		Quantity: quantity,
		Amount:   amount,
		Fees:     fees,
	}}
}

// Validate checks that net proceeds are not negative.
func (t Sell) Validate() error {
	if err := t.orderCmd.Validate(); err != nil {
		return err
	}
	if fees := t.Fees.Total(true); fees.GreaterThan(t.Amount.value) {
		return fmt.Errorf("invalid sell on %s: fees %s exceed proceeds %s", t.Date, fees, t.Amount)
	}
	return nil
}

// Split is a share split or a consolidation of a security.
type Split struct {
	secCmd
	Numerator   int64 // Numerator is the number of new shares.
	Denominator int64 // Denominator is the number of old shares they replace.
}

// NewSplit creates a new Split transaction.
func NewSplit(day date.Date, sec Security, num, den int64) Split {
	return Split{
		secCmd:      secCmd{baseCmd: baseCmd{Command: CmdSplit, Date: day}, Security: sec},
		Numerator:   num,
		Denominator: den,
	}
}

// MarshalJSON implements the json.Marshaler interface for Split.
func (t Split) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.secCmd)
	w.Append("num", t.Numerator)
	w.Append("den", t.Denominator)
	return w.MarshalJSON()
}

// CorporateAction returns the split as a corporate action.
func (t Split) CorporateAction() CorporateAction {
	return CorporateAction{Security: t.Security, Date: t.Date, Numerator: t.Numerator, Denominator: t.Denominator}
}

// Validate checks the split fields.
func (t Split) Validate() error {
	if err := t.secCmd.validate(); err != nil {
		return fmt.Errorf("invalid split on %s: %w", t.Date, err)
	}
	return t.CorporateAction().Validate()
}

// Dividend is a dividend paid by a security.
type Dividend struct {
	secCmd
	Amount   Money           // Amount is the gross dividend.
	Withheld decimal.Decimal // Withheld is the tax withheld at source, in the Amount currency.
	Rate     decimal.Decimal
}

// NewDividend creates a new Dividend transaction.
func NewDividend(day date.Date, sec Security, amount Money, withheld decimal.Decimal) Dividend {
	return Dividend{
		secCmd:   secCmd{baseCmd: baseCmd{Command: CmdDividend, Date: day}, Security: sec},
		Amount:   amount,
		Withheld: withheld,
	}
}

// MarshalJSON implements the json.Marshaler interface for Dividend.
func (t Dividend) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.secCmd)
	w.EmbedFrom(t.Amount)
	if !t.Withheld.IsZero() {
		w.Append("withheld", t.Withheld)
	}
	if !t.Rate.IsZero() {
		w.Append("rate", t.Rate)
	}
	return w.MarshalJSON()
}

// Validate checks the dividend fields.
func (t Dividend) Validate() error {
	if err := t.secCmd.validate(); err != nil {
		return fmt.Errorf("invalid dividend on %s: %w", t.Date, err)
	}
	if err := ValidateCurrency(t.Amount.Currency()); err != nil {
		return fmt.Errorf("invalid dividend on %s: %w", t.Date, err)
	}
	if t.Withheld.IsNegative() {
		return fmt.Errorf("invalid dividend on %s: withheld tax cannot be negative", t.Date)
	}
	return nil
}

// cashCmd is a component for plain cash movements.
type cashCmd struct {
	baseCmd
	Amount Money
	Rate   decimal.Decimal
}

// MarshalJSON implements the json.Marshaler interface for cash movements.
func (t cashCmd) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.EmbedFrom(t.Amount)
	if !t.Rate.IsZero() {
		w.Append("rate", t.Rate)
	}
	return w.MarshalJSON()
}

// Validate checks the amount of the cash movement.
func (t cashCmd) Validate() error {
	if err := t.baseCmd.validate(); err != nil {
		return fmt.Errorf("invalid %s: %w", t.Command, err)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("invalid %s on %s: amount must be positive, got %s", t.Command, t.Date, t.Amount)
	}
	if err := ValidateCurrency(t.Amount.Currency()); err != nil {
		return fmt.Errorf("invalid %s on %s: %w", t.Command, t.Date, err)
	}
	return nil
}

// Interest is interest paid on cash held by the broker.
type Interest struct{ cashCmd }

// NewInterest creates a new Interest transaction.
func NewInterest(day date.Date, amount Money) Interest {
	return Interest{cashCmd{baseCmd: baseCmd{Command: CmdInterest, Date: day}, Amount: amount}}
}

// Deposit is cash deposited into the brokerage account.
type Deposit struct{ cashCmd }

// NewDeposit creates a new Deposit transaction.
func NewDeposit(day date.Date, amount Money) Deposit {
	return Deposit{cashCmd{baseCmd: baseCmd{Command: CmdDeposit, Date: day}, Amount: amount}}
}

// Withdraw is cash withdrawn from the brokerage account.
type Withdraw struct{ cashCmd }

// NewWithdraw creates a new Withdraw transaction.
func NewWithdraw(day date.Date, amount Money) Withdraw {
	return Withdraw{cashCmd{baseCmd: baseCmd{Command: CmdWithdraw, Date: day}, Amount: amount}}
}
