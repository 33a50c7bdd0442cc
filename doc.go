// Package cgt computes UK capital gains from a personal brokerage history.
//
// It is designed to be local-first and auditable: every figure can be traced
// back to a line of the ledger and to the share identification rule that
// produced it.
//
// The core functionalities include:
//   - Ledger Management: orders, splits, dividends, interest and cash
//     transfers recorded in a chronological JSONL file.
//   - Exchange Rates: conversion of foreign orders into pounds sterling using
//     a RateProvider, typically the HMRC monthly rates.
//   - Share Matching: disposals are matched against same-day acquisitions,
//     then acquisitions in the following 30 days (bed and breakfast), then the
//     section 104 pool at average cost. See Compute and Engine.
//   - Tax Years: matches are summarised per UK tax year, from 6 April to
//     5 April. See Summarize.
//
// All amounts are exact decimals, rounding only happens for display.
//
// This package serves as the foundational logic for the `cgt` command-line
// tool.
package cgt
