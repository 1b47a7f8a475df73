package export

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/soender/kvittering/internal/receipt"
)

// Mock Repository
type mockRepo struct {
	listLinesFunc func(ctx context.Context) ([]receipt.Line, error)
}

func (m *mockRepo) Persist(ctx context.Context, rec *receipt.Receipt, items []receipt.Item) error {
	return nil
}

func (m *mockRepo) ListLines(ctx context.Context) ([]receipt.Line, error) {
	if m.listLinesFunc != nil {
		return m.listLinesFunc(ctx)
	}

	return nil, nil
}

func (m *mockRepo) Clear(ctx context.Context) error {
	return nil
}

func TestService_CSV(t *testing.T) {
	paidAt := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

	repo := &mockRepo{
		listLinesFunc: func(ctx context.Context) ([]receipt.Line, error) {
			return []receipt.Line{
				{ProductName: "Milk", UnitPrice: 10.5, Count: 2, MerchantName: "Netto", PaidAt: paidAt},
				{ProductName: "Bread, rye", UnitPrice: 17, Count: 1, MerchantName: "Netto", PaidAt: paidAt},
			}, nil
		},
	}

	svc := NewService(receipt.NewService(repo))

	content, err := svc.CSV(context.Background())
	if err != nil {
		t.Fatalf("CSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 records, got %d lines", len(lines))
	}

	if lines[0] != "name,unit_price,count,merchant_name,paid_at" {
		t.Errorf("unexpected header: %q", lines[0])
	}

	if lines[1] != "Milk,10.5,2,Netto,2024-03-05T14:30:00Z" {
		t.Errorf("unexpected record: %q", lines[1])
	}

	// A comma in the product name must be quoted, not split.
	if lines[2] != `"Bread, rye",17,1,Netto,2024-03-05T14:30:00Z` {
		t.Errorf("unexpected record: %q", lines[2])
	}
}

func TestService_CSV_Empty(t *testing.T) {
	svc := NewService(receipt.NewService(&mockRepo{}))

	content, err := svc.CSV(context.Background())
	if err != nil {
		t.Fatalf("CSV() error = %v", err)
	}

	if got := strings.TrimSpace(string(content)); got != "name,unit_price,count,merchant_name,paid_at" {
		t.Errorf("expected only the header row, got %q", got)
	}
}

func TestService_CSV_ListError(t *testing.T) {
	repo := &mockRepo{
		listLinesFunc: func(ctx context.Context) ([]receipt.Line, error) {
			return nil, errors.New("db error")
		},
	}

	svc := NewService(receipt.NewService(repo))

	if _, err := svc.CSV(context.Background()); err == nil {
		t.Fatal("expected error from failing repository")
	}
}
