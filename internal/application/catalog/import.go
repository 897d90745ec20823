package catalog

import (
	"context"
	"io"

	"github.com/gameshop/backend/internal/domain/shared"
	"github.com/gameshop/backend/internal/infrastructure/pricesheet"
	"go.uber.org/zap"
)

const maxImportErrors = 100

// ImportResult reports what a price sheet import changed
type ImportResult struct {
	TotalRows   int                   `json:"total_rows"`
	Applied     int                   `json:"applied"`
	Failed      int                   `json:"failed"`
	Errors      []pricesheet.RowError `json:"errors"`
	IsTruncated bool                  `json:"is_truncated,omitempty"`
}

// ImportPrices applies every valid row of a CSV price sheet. Rows that
// can not be read or applied are reported and do not stop the others.
func (s *Service) ImportPrices(ctx context.Context, r io.Reader) (*ImportResult, error) {
	sheet, err := pricesheet.Read(r, maxImportErrors)
	if err != nil {
		return nil, shared.ErrInvalidInput.Withf("%s", err)
	}

	errs := sheet.Errors
	applied := 0
	for _, e := range sheet.Entries {
		if _, err := s.SetPrice(ctx, e.ShopID, e.ProductID, e.TradeType, e.Price); err != nil {
			errs.Add(pricesheet.RowError{
				Row:     e.Line,
				Code:    pricesheet.ErrCodeNotApplied,
				Message: err.Error(),
				Value:   e.ShopID + "/" + e.ProductID,
			})
			continue
		}
		applied++
	}

	s.logger.Info("Price sheet imported",
		zap.Int("rows", sheet.TotalRows),
		zap.Int("applied", applied),
		zap.Int("errors", errs.TotalCount()),
	)

	result := &ImportResult{
		TotalRows:   sheet.TotalRows,
		Applied:     applied,
		Failed:      sheet.TotalRows - applied,
		Errors:      errs.Errors(),
		IsTruncated: errs.IsTruncated(),
	}
	if result.Errors == nil {
		result.Errors = []pricesheet.RowError{}
	}
	return result, nil
}
