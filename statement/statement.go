// Package statement reads broker transaction exports.
//
// An export is a delimited text file with a header line. The recognized
// columns are Symbol (or Ticker), Date, Order, Quantity, Total and Type; other
// columns are ignored. ".txt" files are tab separated, others use ';'.
package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/etnz/invest"
	"github.com/etnz/invest/date"
	"github.com/shopspring/decimal"
)

// columns maps each field to its accepted header names, lower case.
var columns = map[string][]string{
	"ticker":   {"symbol", "ticker"},
	"date":     {"date"},
	"order":    {"order"},
	"quantity": {"quantity"},
	"total":    {"total"},
	"type":     {"type"},
}

// Separator returns the field separator of an export file.
func Separator(path string) rune {
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return '\t'
	}
	return ';'
}

// ReadFile reads the export at path.
func ReadFile(path string) ([]invest.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	txs, err := Parse(f, Separator(path))
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", path, err)
	}
	return txs, nil
}

// Parse reads an export using sep as the field separator.
//
// Transactions are returned in file order, unless the file is in descending
// date order, in which case it is reversed. All invalid rows are reported at
// once, wrapping invest.ErrInvalidInput.
func Parse(r io.Reader, sep rune) ([]invest.Transaction, error) {
	reader := csv.NewReader(r)
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	index, err := locate(header)
	if err != nil {
		return nil, err
	}

	var (
		txs  []invest.Transaction
		errs error
	)
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if isBlank(rec) {
			continue
		}
		tx, err := parseRecord(rec, index)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		txs = append(txs, tx)
	}
	if errs != nil {
		return nil, errs
	}

	if len(txs) > 1 && txs[0].Date.After(txs[len(txs)-1].Date) {
		slices.Reverse(txs)
	}
	return txs, nil
}

// locate returns the column index of each field.
func locate(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for field, names := range columns {
			if _, ok := index[field]; !ok && slices.Contains(names, h) {
				index[field] = i
			}
		}
	}
	var missing []string
	for field, names := range columns {
		if _, ok := index[field]; !ok {
			missing = append(missing, names[0])
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, fmt.Errorf("%w: missing columns %s", invest.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return index, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseRecord(rec []string, index map[string]int) (invest.Transaction, error) {
	field := func(name string) string {
		if i := index[name]; i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	var tx invest.Transaction
	var err error
	tx.Ticker = strings.ToUpper(field("ticker"))
	tx.Type = field("type")
	if tx.Date, err = date.Parse(field("date")); err != nil {
		return tx, fmt.Errorf("%w: %w", invest.ErrInvalidInput, err)
	}
	if tx.Action, err = invest.ParseAction(field("order")); err != nil {
		return tx, err
	}
	if tx.Quantity, err = parseDecimal(field("quantity")); err != nil {
		return tx, fmt.Errorf("%w: quantity: %w", invest.ErrInvalidInput, err)
	}
	if tx.Total, err = parseDecimal(field("total")); err != nil {
		return tx, fmt.Errorf("%w: total: %w", invest.ErrInvalidInput, err)
	}
	if err := tx.Validate(); err != nil {
		return tx, err
	}
	return tx, nil
}

// parseDecimal accepts "1234.5" and "1234,5".
func parseDecimal(s string) (decimal.Decimal, error) {
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}
