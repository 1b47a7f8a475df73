package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/soender/kvittering/internal/receipt"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Persist runs the whole reconciliation in one transaction: insert the
// receipt row, upsert products by name, upsert one price row per
// (receipt, product) pair.
func (s *Store) Persist(ctx context.Context, rec *receipt.Receipt, items []receipt.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	receiptQuery := `
		INSERT INTO receipts (merchant_name, paid_at, file_sha256)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err = tx.QueryRowContext(ctx, receiptQuery, rec.MerchantName, rec.PaidAt, rec.FileHash).
		Scan(&rec.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return receipt.ErrDuplicateReceipt
		}

		return fmt.Errorf("inserting receipt: %w", err)
	}

	names := make([]string, len(items))
	counts := make([]float64, len(items))
	unitPrices := make([]float64, len(items))

	for i, item := range items {
		names[i] = item.Name
		counts[i] = item.Count
		unitPrices[i] = item.UnitPrice
	}

	productQuery := `
		INSERT INTO products (name)
		SELECT UNNEST($1::text[])
		ON CONFLICT (name) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, productQuery, names); err != nil {
		return fmt.Errorf("upserting products: %w", err)
	}

	priceQuery := `
		INSERT INTO prices (count, unit_price, receipt_id, product_id)
		SELECT tmp.count, tmp.unit_price, tmp.receipt_id, products.id
		FROM (
			SELECT UNNEST($1::float8[]) AS count,
			       UNNEST($2::float8[]) AS unit_price,
			       $3::integer AS receipt_id,
			       UNNEST($4::text[]) AS name
		) tmp
		INNER JOIN products ON tmp.name = products.name
		ON CONFLICT (receipt_id, product_id)
		DO UPDATE SET count = excluded.count, unit_price = excluded.unit_price
	`
	if _, err := tx.ExecContext(ctx, priceQuery, counts, unitPrices, rec.ID, names); err != nil {
		return fmt.Errorf("upserting prices: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) ListLines(ctx context.Context) ([]receipt.Line, error) {
	query := `
		SELECT products.name, prices.unit_price, prices.count,
		       receipts.merchant_name, receipts.paid_at
		FROM receipts
		JOIN prices ON receipts.id = prices.receipt_id
		JOIN products ON products.id = prices.product_id
		ORDER BY receipts.paid_at ASC, products.name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing lines: %w", err)
	}
	defer rows.Close()

	var lines []receipt.Line

	for rows.Next() {
		var line receipt.Line
		if err := rows.Scan(
			&line.ProductName, &line.UnitPrice, &line.Count,
			&line.MerchantName, &line.PaidAt,
		); err != nil {
			return nil, fmt.Errorf("scanning line: %w", err)
		}

		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lines: %w", err)
	}

	return lines, nil
}

// Clear deletes prices before products and receipts to respect the foreign
// keys.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"prices", "products", "receipts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
