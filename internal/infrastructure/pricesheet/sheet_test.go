package pricesheet

import (
	"io"
	"strings"
	"testing"

	"github.com/gameshop/backend/internal/domain/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParser(t *testing.T) {
	t.Run("BOM is stripped", func(t *testing.T) {
		parser, err := NewParser(strings.NewReader("\xEF\xBB\xBFShop,Product\nblocks,stone"))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())
		assert.Equal(t, []string{"shop", "product"}, parser.Headers())
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := NewParser(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("invalid encoding", func(t *testing.T) {
		_, err := NewParser(strings.NewReader("shop\n\xff\xfe"))
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("custom delimiter", func(t *testing.T) {
		parser, err := NewParser(strings.NewReader("shop;product\nblocks; stone "), WithDelimiter(';'))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		row, err := parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, 2, row.Line)
		assert.Equal(t, "stone", row.Get("product"))

		_, err = parser.ReadRow()
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("short rows are padded", func(t *testing.T) {
		parser, err := NewParser(strings.NewReader("shop,product\nblocks"))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		row, err := parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, "", row.Get("product"))
		assert.False(t, row.IsEmpty())
	})
}

func TestRead(t *testing.T) {
	sheet, err := Read(strings.NewReader(`shop,product,trade_type,price,note
Blocks,Stone,buy,12.5,
blocks,stone,SELL,-1,disabled

blocks,dirt,trade,1
blocks,dirt,buy,cheap
,sand,buy,1
blocks,stone,buy,13
`), 0)
	require.NoError(t, err)

	require.Len(t, sheet.Entries, 2)
	assert.Equal(t, Entry{
		Line:      2,
		ShopID:    "blocks",
		ProductID: "stone",
		TradeType: product.TradeBuy,
		Price:     decimal.RequireFromString("12.5"),
	}, sheet.Entries[0])
	assert.Equal(t, product.TradeSell, sheet.Entries[1].TradeType)
	assert.True(t, sheet.Entries[1].Price.Equal(decimal.NewFromInt(-1)))

	assert.Equal(t, 6, sheet.TotalRows)
	require.Equal(t, 4, sheet.Errors.TotalCount())
	errs := sheet.Errors.Errors()

	assert.Equal(t, RowError{Row: 5, Column: ColumnTradeType, Code: ErrCodeInvalidValue, Message: "expected buy or sell", Value: "trade"}, errs[0])
	assert.Equal(t, ColumnPrice, errs[1].Column)
	assert.Equal(t, 6, errs[1].Row)
	assert.Equal(t, ErrCodeRequiredField, errs[2].Code)
	assert.Equal(t, ColumnShop, errs[2].Column)
	assert.Equal(t, ErrCodeDuplicate, errs[3].Code)
	assert.Equal(t, 8, errs[3].Row)
	assert.Contains(t, errs[3].Error(), "row 2")
}

func TestRead_SheetErrors(t *testing.T) {
	_, err := Read(strings.NewReader("shop,product\nblocks,stone"), 0)
	require.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), "trade_type, price")

	_, err = Read(strings.NewReader("\n"), 0)
	assert.Error(t, err)
}

func TestErrorCollection(t *testing.T) {
	ec := NewErrorCollection(1)
	assert.False(t, ec.HasErrors())

	ec.AddRequired(2, "shop")
	ec.AddInvalid(3, "price", "expected a decimal number", "x")

	assert.True(t, ec.HasErrors())
	assert.True(t, ec.IsTruncated())
	assert.Equal(t, 2, ec.TotalCount())
	require.Len(t, ec.Errors(), 1)
	assert.Equal(t, "row 2, column 'shop': field 'shop' is required", ec.Errors()[0].Error())
	assert.Equal(t, "row 4: bad", RowError{Row: 4, Message: "bad"}.Error())
}
