package cmd

import (
	"github.com/etnz/cgt/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion tree of the cgt command.
func Completion() *complete.Command {
	taxYears := predict.Something
	ticker := predict.Something
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"ledger":    predict.Files("*.jsonl"),
			"cache-dir": predict.Dirs("*"),
			"offline":   predict.Nothing,
			"splits":    predict.Set{"yahoo", "eodhd"},
			"v":         predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"orders": {Flags: map[string]complete.Predictor{
				"ticker": ticker, "tax-year": taxYears,
				"acquisitions": predict.Nothing, "disposals": predict.Nothing, "no-forex-fees": predict.Nothing,
			}},
			"dividends": {Flags: map[string]complete.Predictor{"ticker": ticker, "tax-year": taxYears}},
			"transfers": {Flags: map[string]complete.Predictor{
				"tax-year": taxYears, "deposits": predict.Nothing, "withdrawals": predict.Nothing,
			}},
			"interest": {Flags: map[string]complete.Predictor{"tax-year": taxYears}},
			"capital-gains": {Flags: map[string]complete.Predictor{
				"ticker": ticker, "tax-year": taxYears,
				"gains": predict.Nothing, "losses": predict.Nothing, "no-forex-fees": predict.Nothing,
			}},
			"tax-summary": {Flags: map[string]complete.Predictor{"tax-year": taxYears}},
			"holdings": {Flags: map[string]complete.Predictor{
				"ticker": ticker, "show-avg-cost": predict.Nothing, "show-value": predict.Nothing,
			}},
			"splits":        {Flags: map[string]complete.Predictor{"u": predict.Nothing, "ticker": ticker}},
			"format-ledger": {Flags: map[string]complete.Predictor{"check": predict.Nothing}},
			"topic": {Args: complete.PredictFunc(func(string) []string {
				return append(docs.List(), docs.Readme, "*")
			})},
			"help":  {},
			"flags": {},
		},
	}
}
