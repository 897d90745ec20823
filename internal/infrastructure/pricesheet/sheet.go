package pricesheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gameshop/backend/internal/domain/product"
	"github.com/shopspring/decimal"
)

// Entry is one validated price of a sheet
type Entry struct {
	Line      int
	ShopID    string
	ProductID string
	TradeType product.TradeType
	Price     decimal.Decimal
}

// Sheet is the result of reading a price sheet. Invalid rows are reported
// in Errors and left out of Entries.
type Sheet struct {
	Entries   []Entry
	Errors    *ErrorCollection
	TotalRows int
}

// Read parses a whole price sheet. It fails only when the sheet as a whole
// is unusable; problems with single rows end up in Sheet.Errors.
func Read(r io.Reader, maxErrors int, opts ...ParserOption) (*Sheet, error) {
	parser, err := NewParser(r, opts...)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	if missing := parser.MissingHeaders(RequiredColumns); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	sheet := &Sheet{Errors: NewErrorCollection(maxErrors)}
	seen := make(map[string]int)
	for {
		row, err := parser.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			sheet.TotalRows++
			sheet.Errors.Add(RowError{Row: parser.CurrentRow(), Code: ErrCodeMalformedRow, Message: err.Error()})
			continue
		}
		if row.IsEmpty() {
			continue
		}
		sheet.TotalRows++

		entry, ok := parseRow(row, sheet.Errors)
		if !ok {
			continue
		}
		key := entry.ShopID + "/" + entry.ProductID + "/" + entry.TradeType.String()
		if first, dup := seen[key]; dup {
			sheet.Errors.Add(RowError{
				Row:     row.Line,
				Code:    ErrCodeDuplicate,
				Message: fmt.Sprintf("%s price of %s/%s already set on row %d", entry.TradeType, entry.ShopID, entry.ProductID, first),
			})
			continue
		}
		seen[key] = row.Line
		sheet.Entries = append(sheet.Entries, entry)
	}
	return sheet, nil
}

func parseRow(row *Row, errs *ErrorCollection) (Entry, bool) {
	entry := Entry{
		Line:      row.Line,
		ShopID:    strings.ToLower(row.Get(ColumnShop)),
		ProductID: strings.ToLower(row.Get(ColumnProduct)),
	}
	ok := true
	for _, column := range RequiredColumns {
		if row.Get(column) == "" {
			errs.AddRequired(row.Line, column)
			ok = false
		}
	}
	if !ok {
		return entry, false
	}

	tradeType, err := product.ParseTradeType(row.Get(ColumnTradeType))
	if err != nil {
		errs.AddInvalid(row.Line, ColumnTradeType, "expected buy or sell", row.Get(ColumnTradeType))
		ok = false
	}
	entry.TradeType = tradeType

	price, err := decimal.NewFromString(row.Get(ColumnPrice))
	if err != nil {
		errs.AddInvalid(row.Line, ColumnPrice, "expected a decimal number", row.Get(ColumnPrice))
		ok = false
	}
	entry.Price = price

	return entry, ok
}
