package receipt

import (
	"errors"
	"time"
)

// ErrDuplicateReceipt means a receipt with the same file hash is already
// persisted. The store maps the unique-constraint violation to this error so
// callers can rely on the database, not a pre-check, to close the dedup race.
var ErrDuplicateReceipt = errors.New("receipt already exists for file hash")

// Receipt is one persisted receipt row.
type Receipt struct {
	ID           int32
	MerchantName string
	PaidAt       time.Time
	FileHash     string
}

// Item is one (product, count, unit price) tuple destined for the prices
// table.
type Item struct {
	Name      string
	Count     float64
	UnitPrice float64
}

// Line is one normalized row joined across receipts, prices and products.
type Line struct {
	ProductName  string
	UnitPrice    float64
	Count        float64
	MerchantName string
	PaidAt       time.Time
}

// PersistParams carries one extracted receipt into reconciliation.
type PersistParams struct {
	MerchantName string
	PaidAt       time.Time
	FileHash     string
	Items        []Item
}
