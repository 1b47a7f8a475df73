// Package ingest orchestrates the analysis job lifecycle: dedup check,
// submission, deferred poll, caching and persistence.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/soender/kvittering/internal/analysis"
	"github.com/soender/kvittering/internal/extract"
	"github.com/soender/kvittering/internal/receipt"
)

// ErrAlreadyAnalyzed means the uploaded file's hash already has a cache
// entry, placeholder or complete, and will not be resubmitted.
var ErrAlreadyAnalyzed = errors.New("file hash already known, not running analysis")

//go:generate mockgen -source=service.go -destination=deps_mock.go -package=ingest
type Analyzer interface {
	Submit(ctx context.Context, base64Source string) (operationURL string, err error)
	Fetch(ctx context.Context, operationURL string) ([]byte, error)
}

type Cache interface {
	Has(hash string) (bool, error)
	Reserve(hash string) error
	Store(hash, rawText string) error
	Load(hash string) (string, error)
	List() ([]string, error)
}

type Persister interface {
	Persist(ctx context.Context, params receipt.PersistParams) error
	Clear(ctx context.Context) error
}

// Service tracks one analysis job per unique upload. Jobs live only in the
// spawned goroutine: terminal states are not persisted, only their side
// effects (cache entry, database rows) are. Safe for a single instance;
// distributing this needs a durable work queue keyed by file hash.
type Service struct {
	analyzer  Analyzer
	cache     Cache
	persister Persister
	extractor *extract.Extractor

	// pollDelay is a single fixed wait before the one and only poll. A job
	// still running when the poll fires is treated as the final answer and
	// never re-polled.
	pollDelay time.Duration
	stagger   time.Duration
}

// Option configures optional Service parameters.
type Option func(*Service)

// WithStagger overrides the delay between repopulation task launches.
func WithStagger(d time.Duration) Option {
	return func(s *Service) {
		s.stagger = d
	}
}

func NewService(analyzer Analyzer, cache Cache, persister Persister, extractor *extract.Extractor, pollDelay time.Duration, opts ...Option) *Service {
	s := &Service{
		analyzer:  analyzer,
		cache:     cache,
		persister: persister,
		extractor: extractor,
		pollDelay: pollDelay,
		stagger:   time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Upload submits file bytes for analysis and returns the operation URL the
// result will appear at. The poll-and-persist sequence runs as a detached
// task; its failures are logged, never surfaced to the caller.
func (s *Service) Upload(ctx context.Context, data []byte) (string, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	known, err := s.cache.Has(hash)
	if err != nil {
		return "", fmt.Errorf("checking cache: %w", err)
	}

	if known {
		return "", ErrAlreadyAnalyzed
	}

	if err := s.cache.Reserve(hash); err != nil {
		return "", fmt.Errorf("reserving cache entry: %w", err)
	}

	jobID := uuid.New()
	slog.Info("new file detected, starting analysis", "job_id", jobID, "file_hash", hash)

	operationURL, err := s.analyzer.Submit(ctx, base64.StdEncoding.EncodeToString(data))
	if err != nil {
		return "", fmt.Errorf("submitting analysis: %w", err)
	}

	slog.Info("analysis queued", "job_id", jobID, "operation_url", operationURL)

	go s.awaitResult(jobID, hash, operationURL)

	return operationURL, nil
}

// awaitResult sleeps the fixed delay, polls once and processes the response.
// It is detached from the upload request, so it uses a background context.
func (s *Service) awaitResult(jobID uuid.UUID, hash, operationURL string) {
	time.Sleep(s.pollDelay)

	slog.Info("requesting analysis results", "job_id", jobID)

	body, err := s.analyzer.Fetch(context.Background(), operationURL)
	if err != nil {
		slog.Error("fetching analysis results failed", "job_id", jobID, "error", err)
		return
	}

	if err := s.processResult(context.Background(), hash, body); err != nil {
		slog.Error("processing analysis results failed", "job_id", jobID, "error", err)
		return
	}

	slog.Info("analysis results processed", "job_id", jobID, "file_hash", hash)
}

// processResult caches the raw body, then decodes, extracts and persists it.
// The cache write happens first so a later repopulation can replay the
// response even if persistence fails now.
func (s *Service) processResult(ctx context.Context, hash string, body []byte) error {
	if err := s.cache.Store(hash, string(body)); err != nil {
		return fmt.Errorf("caching raw response: %w", err)
	}

	op, err := analysis.DecodeOperation(body)
	if err != nil {
		return fmt.Errorf("decoding analysis result: %w", err)
	}

	return s.persistOperation(ctx, hash, op)
}

func (s *Service) persistOperation(ctx context.Context, hash string, op *analysis.AnalyzeResultOperation) error {
	rec, err := s.extractor.FromOperation(op)
	if err != nil {
		return fmt.Errorf("extracting receipt: %w", err)
	}

	items := make([]receipt.Item, len(rec.Items))
	for i, item := range rec.Items {
		items[i] = receipt.Item{Name: item.Name, Count: item.Count, UnitPrice: item.UnitPrice}
	}

	return s.persister.Persist(ctx, receipt.PersistParams{
		MerchantName: rec.MerchantName,
		PaidAt:       rec.PaidAt,
		FileHash:     hash,
		Items:        items,
	})
}

// Repopulate clears the relational tables and re-derives them from every
// cached raw response. Each entry runs as its own detached task, staggered
// so a large backlog does not exhaust the connection pool; per-entry
// failures are logged and skipped.
func (s *Service) Repopulate(ctx context.Context) error {
	if err := s.persister.Clear(ctx); err != nil {
		return fmt.Errorf("clearing tables: %w", err)
	}

	hashes, err := s.cache.List()
	if err != nil {
		return fmt.Errorf("listing cache: %w", err)
	}

	go func() {
		for _, hash := range hashes {
			time.Sleep(s.stagger)

			go func(hash string) {
				jobID := uuid.New()

				if err := s.replayEntry(hash); err != nil {
					slog.Error("replaying cached entry failed", "job_id", jobID, "file_hash", hash, "error", err)
					return
				}

				slog.Info("replayed cached entry", "job_id", jobID, "file_hash", hash)
			}(hash)
		}
	}()

	return nil
}

func (s *Service) replayEntry(hash string) error {
	raw, err := s.cache.Load(hash)
	if err != nil {
		return fmt.Errorf("loading cache entry: %w", err)
	}

	op, err := analysis.DecodeOperation([]byte(raw))
	if err != nil {
		return fmt.Errorf("decoding cached response: %w", err)
	}

	return s.persistOperation(context.Background(), hash, op)
}

// ParsedResults decodes every cached raw response. It backs the operator
// cache dump endpoint.
func (s *Service) ParsedResults(ctx context.Context) ([]*analysis.AnalyzeResultOperation, error) {
	hashes, err := s.cache.List()
	if err != nil {
		return nil, fmt.Errorf("listing cache: %w", err)
	}

	ops := make([]*analysis.AnalyzeResultOperation, 0, len(hashes))

	for _, hash := range hashes {
		raw, err := s.cache.Load(hash)
		if err != nil {
			return nil, fmt.Errorf("loading cache entry %s: %w", hash, err)
		}

		op, err := analysis.DecodeOperation([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("decoding cache entry %s: %w", hash, err)
		}

		ops = append(ops, op)
	}

	return ops, nil
}
