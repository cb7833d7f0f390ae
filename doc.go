// Package invest is a portfolio valuation engine.
//
// It folds a broker transaction export into per-ticker positions, and values
// them over time using external price, exchange rate and consumer price index
// histories. The core functionalities are:
//   - Time series: step and linear interpolation over irregular samples (see
//     the date package).
//   - Exchange: conversion of any quote currency to a single reference
//     currency, at the rate of the day.
//   - Inflation: period over period consumer price index variation.
//   - Asset: the state machine of a single ticker, from its transactions and
//     splits to its quantity, cost basis, value and dividends at any date.
//   - Portfolio: the sum of all assets over a date grid, and the portfolio
//     level nominal and inflation adjusted returns over lookback windows.
//
// Every query takes an explicit date so that a single computation pass agrees
// on "now". Monetary queries are total: they return 0 rather than an error for
// dates outside the known history.
//
// Fetching and parsing are delegated to collaborators: HistorySource and
// CPISource implementations live in the yahoo, ibge and insee packages, the
// transaction export parser in the statement package.
package invest
