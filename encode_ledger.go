package cgt

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// amountCmd is a specialized struct to read from ledger amount in two fields.
type amountCmd struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (a amountCmd) Money() Money {
	return M(a.Amount, a.Currency)
}

// DecodeLedger decodes transactions from a stream of JSONL data, one command
// per line, and returns them in a chronologically sorted Ledger.
//
// Errors report the line number, starting at 1.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}
		tx, err := decodeTransaction(lineBytes)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		ledger.Append(tx)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return ledger, nil
}

func decodeTransaction(line []byte) (Transaction, error) {
	var identifier struct {
		Command CommandType `json:"command"`
	}
	if err := json.Unmarshal(line, &identifier); err != nil {
		return nil, fmt.Errorf("could not identify command in %q: %w", string(line), err)
	}

	switch identifier.Command {
	case CmdBuy, CmdSell:
		var temp struct {
			baseCmd
			Security
			amountCmd
			Quantity Quantity        `json:"quantity"`
			Fees     Fees            `json:"fees"`
			Rate     decimal.Decimal `json:"rate"`
		}
		if err := json.Unmarshal(line, &temp); err != nil {
			return nil, err
		}
		order := orderCmd{
			secCmd:   secCmd{baseCmd: temp.baseCmd, Security: temp.Security},
			Quantity: temp.Quantity,
			Amount:   temp.Money(),
			Fees:     temp.Fees,
			Rate:     temp.Rate,
		}
		if identifier.Command == CmdBuy {
			return Buy{order}, nil
		}
		return Sell{order}, nil

	case CmdSplit:
		var temp struct {
			baseCmd
			Security
			Numerator   int64 `json:"num"`
			Denominator int64 `json:"den"`
		}
		if err := json.Unmarshal(line, &temp); err != nil {
			return nil, err
		}
		return Split{
			secCmd:      secCmd{baseCmd: temp.baseCmd, Security: temp.Security},
			Numerator:   temp.Numerator,
			Denominator: temp.Denominator,
		}, nil

	case CmdDividend:
		var temp struct {
			baseCmd
			Security
			amountCmd
			Withheld decimal.Decimal `json:"withheld"`
			Rate     decimal.Decimal `json:"rate"`
		}
		if err := json.Unmarshal(line, &temp); err != nil {
			return nil, err
		}
		return Dividend{
			secCmd:   secCmd{baseCmd: temp.baseCmd, Security: temp.Security},
			Amount:   temp.Money(),
			Withheld: temp.Withheld,
			Rate:     temp.Rate,
		}, nil

	case CmdInterest, CmdDeposit, CmdWithdraw:
		var temp struct {
			baseCmd
			amountCmd
			Rate decimal.Decimal `json:"rate"`
		}
		if err := json.Unmarshal(line, &temp); err != nil {
			return nil, err
		}
		cash := cashCmd{baseCmd: temp.baseCmd, Amount: temp.Money(), Rate: temp.Rate}
		switch identifier.Command {
		case CmdInterest:
			return Interest{cash}, nil
		case CmdDeposit:
			return Deposit{cash}, nil
		default:
			return Withdraw{cash}, nil
		}
	}
	return nil, fmt.Errorf("unknown transaction command: %q", identifier.Command)
}

// EncodeTransaction marshals a single transaction to JSON and writes it to the
// writer, followed by a newline, in JSONL format.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write transaction: %w", err)
	}
	return nil
}

// EncodeLedger writes all transactions, in chronological order, in JSONL format.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	for _, tx := range ledger.transactions {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}
