// Package extract turns a decoded analysis result into normalized line items.
package extract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/soender/kvittering/internal/analysis"
)

var (
	// ErrMissingField means the result lacks the document-level structure
	// extraction needs. Everything below the document is optional; the
	// document itself is not.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidTimestamp means the transaction date and time did not
	// combine into a parseable timestamp.
	ErrInvalidTimestamp = errors.New("invalid transaction timestamp")

	// ErrAmbiguousLocalTime means the local timestamp falls in a DST gap
	// or overlap and has no unique instant in the reference zone.
	ErrAmbiguousLocalTime = errors.New("ambiguous local time")
)

// maxItems caps how many line items one receipt can contribute, matching the
// bind-parameter ceiling of the store's array upsert.
const maxItems = 65535

// timestampLayout accepts both zero-padded and bare date and time fields:
// raw date spans on some receipts print as YYYY-m-d.
const timestampLayout = "2006-1-2 15:4:5"

// vendorRawDateTokens names merchants whose typed date value is known to
// transpose day and month. For those, when the raw date span is hyphenated
// it is trusted over the typed value.
var vendorRawDateTokens = []string{"netto"}

// LineItem is one normalized (product, count, unit price) tuple.
type LineItem struct {
	Name      string
	Count     float64
	UnitPrice float64
}

// Receipt is the extraction output handed to persistence.
type Receipt struct {
	MerchantName string
	PaidAt       time.Time
	Items        []LineItem
}

// Extractor applies the line-item extraction policy in a fixed reference
// time zone.
type Extractor struct {
	loc *time.Location
}

// New loads the reference zone (Europe/Copenhagen) once.
func New() (*Extractor, error) {
	loc, err := time.LoadLocation("Europe/Copenhagen")
	if err != nil {
		return nil, fmt.Errorf("loading reference time zone: %w", err)
	}

	return &Extractor{loc: loc}, nil
}

// FromOperation extracts a normalized receipt from a completed analysis
// operation. It fails only when the result, its document list, or the first
// document is absent, or when the transaction timestamp cannot be resolved;
// individual items with no detected price are silently dropped.
func (e *Extractor) FromOperation(op *analysis.AnalyzeResultOperation) (*Receipt, error) {
	if op.AnalyzeResult == nil {
		return nil, fmt.Errorf("%w: analyzeResult", ErrMissingField)
	}

	if len(op.AnalyzeResult.Documents) == 0 {
		return nil, fmt.Errorf("%w: documents", ErrMissingField)
	}

	fields := analysis.ProjectReceipt(op.AnalyzeResult.Documents[0].Fields)

	paidAt, err := e.resolveTimestamp(fields)
	if err != nil {
		return nil, err
	}

	return &Receipt{
		MerchantName: fields.MerchantName,
		PaidAt:       paidAt,
		Items:        extractItems(fields.Items),
	}, nil
}

func extractItems(items []analysis.ReceiptItem) []LineItem {
	var out []LineItem

	for _, item := range items {
		// Items where no price was detected at all are thrown away.
		price := item.UnitPrice
		if price == nil {
			price = item.TotalPrice
		}

		if price == nil {
			continue
		}

		count := 1.0
		if item.Quantity != nil {
			count = *item.Quantity
		}

		out = append(out, LineItem{
			Name:      item.Description,
			Count:     count,
			UnitPrice: *price,
		})

		if len(out) == maxItems {
			break
		}
	}

	return out
}

// resolveTimestamp concatenates the transaction date and time and interprets
// the result in the reference zone.
func (e *Extractor) resolveTimestamp(fields analysis.ReceiptFields) (time.Time, error) {
	dateStr := fields.TransactionDate.Value
	if usesRawDate(fields.MerchantName) && strings.Contains(fields.TransactionDate.Content, "-") {
		dateStr = fields.TransactionDate.Content
	}

	combined := dateStr + " " + fields.TransactionTime

	naive, err := time.Parse(timestampLayout, combined)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, combined)
	}

	local := time.Date(naive.Year(), naive.Month(), naive.Day(),
		naive.Hour(), naive.Minute(), naive.Second(), 0, e.loc)

	// A spring-forward gap shifts the wall clock; a fall-back overlap has a
	// second instant one hour away with the same wall clock. Either way the
	// local time has no unique instant.
	if !sameWallClock(local, naive) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrAmbiguousLocalTime, combined)
	}

	for _, d := range []time.Duration{-time.Hour, time.Hour} {
		if sameWallClock(local.Add(d), naive) {
			return time.Time{}, fmt.Errorf("%w: %q", ErrAmbiguousLocalTime, combined)
		}
	}

	return local, nil
}

func sameWallClock(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd &&
		a.Hour() == b.Hour() && a.Minute() == b.Minute() && a.Second() == b.Second()
}

func usesRawDate(merchantName string) bool {
	lower := strings.ToLower(merchantName)
	for _, token := range vendorRawDateTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}

	return false
}
