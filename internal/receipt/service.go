package receipt

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=receipt
type Repository interface {
	// Persist inserts the receipt row and upserts its products and prices
	// in a single transaction. A receipt with the same file hash must fail
	// with ErrDuplicateReceipt; re-persisted (receipt, product) pairs are
	// overwritten rather than duplicated.
	Persist(ctx context.Context, rec *Receipt, items []Item) error

	ListLines(ctx context.Context) ([]Line, error)

	// Clear deletes all prices, products and receipts.
	Clear(ctx context.Context) error
}

// Service reconciles extracted receipts into the normalized schema.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Persist merges one extracted receipt into the database. Product names are
// NFC-normalized so visually identical names share one product row, and
// items repeating a name within the receipt collapse to the last-seen
// (count, unit price) for that name. Losing the earlier entries is a known
// trade-off of keying prices by (receipt, product).
func (s *Service) Persist(ctx context.Context, params PersistParams) error {
	rec := &Receipt{
		MerchantName: params.MerchantName,
		PaidAt:       params.PaidAt,
		FileHash:     params.FileHash,
	}

	if err := s.repo.Persist(ctx, rec, dedupeItems(params.Items)); err != nil {
		return fmt.Errorf("persisting receipt: %w", err)
	}

	return nil
}

// List returns every normalized line row.
func (s *Service) List(ctx context.Context) ([]Line, error) {
	return s.repo.ListLines(ctx)
}

// Clear deletes all relational data.
func (s *Service) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}

func dedupeItems(items []Item) []Item {
	byName := make(map[string]Item, len(items))

	for _, item := range items {
		item.Name = norm.NFC.String(item.Name)
		byName[item.Name] = item
	}

	out := make([]Item, 0, len(byName))
	for _, item := range byName {
		out = append(out, item)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}
