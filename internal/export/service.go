package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/soender/kvittering/internal/receipt"
)

// Service serializes the normalized line rows as CSV.
type Service struct {
	receipts *receipt.Service
}

func NewService(receipts *receipt.Service) *Service {
	return &Service{receipts: receipts}
}

var header = []string{"name", "unit_price", "count", "merchant_name", "paid_at"}

// CSV renders every normalized row, one record per line plus a header row.
func (s *Service) CSV(ctx context.Context) ([]byte, error) {
	lines, err := s.receipts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing lines: %w", err)
	}

	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for _, line := range lines {
		record := []string{
			line.ProductName,
			strconv.FormatFloat(line.UnitPrice, 'f', -1, 64),
			strconv.FormatFloat(line.Count, 'f', -1, 64),
			line.MerchantName,
			line.PaidAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("writing record: %w", err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}

	return buf.Bytes(), nil
}
