// Package detection runs pairwise duplicate detection over the master
// data tables and records candidates above the similarity threshold.
package detection

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/scoring"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// DefaultThreshold is the minimum similarity score that flags a pair
const DefaultThreshold = 0.8

// DefaultPageLimit is how many records a run loads per page
const DefaultPageLimit = 100

// ClientSource lists active client records in pages
type ClientSource interface {
	ListActive(ctx context.Context, limit, offset int) ([]models.Client, error)
}

// ProductSource lists active product records in pages
type ProductSource interface {
	ListActive(ctx context.Context, limit, offset int) ([]models.Product, error)
}

// SupplierSource lists active supplier records in pages
type SupplierSource interface {
	ListActive(ctx context.Context, limit, offset int) ([]models.Supplier, error)
}

// CandidateStore persists flagged pairs
type CandidateStore interface {
	ExistsPair(ctx context.Context, entityTable string, recordA, recordB uuid.UUID) (bool, error)
	Create(ctx context.Context, candidate *models.DuplicateCandidate) (*models.DuplicateCandidate, error)
}

// CandidateEmitter announces newly flagged pairs
type CandidateEmitter interface {
	EmitCandidateFound(ctx context.Context, candidate *models.DuplicateCandidate)
}

// Engine compares every active record pair within a table and stores
// candidates scoring at or above the threshold. Runs are serialized: a
// second run requested while one is in flight is rejected.
type Engine struct {
	clients   ClientSource
	products  ProductSource
	suppliers SupplierSource
	store     CandidateStore
	emitter   CandidateEmitter
	threshold float64
	pageLimit int
	logger    ectologger.Logger

	mu sync.Mutex
}

// NewEngine creates a new detection engine. threshold <= 0 falls back
// to DefaultThreshold and pageLimit <= 0 to DefaultPageLimit.
func NewEngine(
	clients ClientSource,
	products ProductSource,
	suppliers SupplierSource,
	store CandidateStore,
	emitter CandidateEmitter,
	threshold float64,
	pageLimit int,
	logger ectologger.Logger,
) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if pageLimit <= 0 {
		pageLimit = DefaultPageLimit
	}
	return &Engine{
		clients:   clients,
		products:  products,
		suppliers: suppliers,
		store:     store,
		emitter:   emitter,
		threshold: threshold,
		pageLimit: pageLimit,
		logger:    logger,
	}
}

// Detect runs duplicate detection for one entity table and returns the
// newly recorded candidates, highest score first. threshold 0 uses the
// engine default.
func (e *Engine) Detect(ctx context.Context, entityTable string, threshold float64) ([]*models.DuplicateCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "detection.Engine.Detect")
	defer span.End()

	if !models.IsEntityTable(entityTable) {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown entity table %q", entityTable)
	}
	threshold, err := e.resolveThreshold(threshold)
	if err != nil {
		return nil, err
	}

	if !e.mu.TryLock() {
		return nil, httperror.NewHTTPError(http.StatusConflict, "a detection run is already in progress")
	}
	defer e.mu.Unlock()

	return e.detectLocked(ctx, entityTable, threshold)
}

// Summary reports one table's outcome within a DetectAll run.
type Summary struct {
	NewPairs int    `json:"new_pairs"`
	Error    string `json:"error,omitempty"`
}

// DetectAll runs detection for every entity table. Tables are isolated:
// one table's failure is reported in its summary and does not stop the
// others.
func (e *Engine) DetectAll(ctx context.Context, threshold float64) (map[string]Summary, error) {
	ctx, span := tracing.StartSpan(ctx, "detection.Engine.DetectAll")
	defer span.End()

	threshold, err := e.resolveThreshold(threshold)
	if err != nil {
		return nil, err
	}

	if !e.mu.TryLock() {
		return nil, httperror.NewHTTPError(http.StatusConflict, "a detection run is already in progress")
	}
	defer e.mu.Unlock()

	summaries := make(map[string]Summary, len(models.EntityTables))
	for _, table := range models.EntityTables {
		created, err := e.detectLocked(ctx, table, threshold)
		summary := Summary{NewPairs: len(created)}
		if err != nil {
			summary.Error = err.Error()
			e.logger.WithContext(ctx).WithError(err).WithField("entity_table", table).Error("Detection failed for table")
		}
		summaries[table] = summary
	}

	return summaries, nil
}

// resolveThreshold validates a caller-supplied threshold. Zero means
// unset and falls back to the engine default; anything outside [0, 1]
// is rejected.
func (e *Engine) resolveThreshold(threshold float64) (float64, error) {
	if threshold < 0 || threshold > 1 {
		return 0, httperror.NewHTTPError(http.StatusBadRequest, "threshold must be between 0 and 1")
	}
	if threshold == 0 {
		return e.threshold, nil
	}
	return threshold, nil
}

func (e *Engine) detectLocked(ctx context.Context, entityTable string, threshold float64) ([]*models.DuplicateCandidate, error) {
	start := time.Now()

	var (
		created []*models.DuplicateCandidate
		err     error
	)
	switch entityTable {
	case models.TableClients:
		created, err = e.detectClients(ctx, threshold)
	case models.TableProducts:
		created, err = e.detectProducts(ctx, threshold)
	case models.TableSuppliers:
		created, err = e.detectSuppliers(ctx, threshold)
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DetectionRunsTotal.WithLabelValues(entityTable, status).Inc()
	metrics.DetectionDuration.WithLabelValues(entityTable).Observe(time.Since(start).Seconds())

	if err == nil {
		e.logger.WithContext(ctx).WithFields(map[string]any{
			"entity_table": entityTable,
			"threshold":    threshold,
			"new_matches":  len(created),
			"elapsed":      time.Since(start),
		}).Info("Duplicate detection run completed")
	}

	sortByScore(created)
	return created, err
}

// loadPages drains a paged source into one slice so every record pair
// is compared regardless of page size.
func loadPages[T any](ctx context.Context, pageLimit int, fetch func(ctx context.Context, limit, offset int) ([]T, error)) ([]T, error) {
	var all []T
	for offset := 0; ; offset += pageLimit {
		page, err := fetch(ctx, pageLimit, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageLimit {
			return all, nil
		}
	}
}

func (e *Engine) detectClients(ctx context.Context, threshold float64) ([]*models.DuplicateCandidate, error) {
	records, err := loadPages(ctx, e.pageLimit, e.clients.ListActive)
	if err != nil {
		return nil, err
	}

	var created []*models.DuplicateCandidate
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			metrics.ComparisonsTotal.WithLabelValues(models.TableClients).Inc()

			result := scoring.Clients(&records[i], &records[j])
			if result.Score < threshold {
				continue
			}

			candidate, err := e.record(ctx, models.TableClients, records[i].ID, records[j].ID, result.Score)
			if err != nil {
				return created, err
			}
			if candidate != nil {
				created = append(created, candidate)
			}
		}
	}

	return created, nil
}

func (e *Engine) detectProducts(ctx context.Context, threshold float64) ([]*models.DuplicateCandidate, error) {
	records, err := loadPages(ctx, e.pageLimit, e.products.ListActive)
	if err != nil {
		return nil, err
	}

	var created []*models.DuplicateCandidate
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			metrics.ComparisonsTotal.WithLabelValues(models.TableProducts).Inc()

			result := scoring.Products(&records[i], &records[j])
			if result.Score < threshold {
				continue
			}

			candidate, err := e.record(ctx, models.TableProducts, records[i].ID, records[j].ID, result.Score)
			if err != nil {
				return created, err
			}
			if candidate != nil {
				created = append(created, candidate)
			}
		}
	}

	return created, nil
}

func (e *Engine) detectSuppliers(ctx context.Context, threshold float64) ([]*models.DuplicateCandidate, error) {
	records, err := loadPages(ctx, e.pageLimit, e.suppliers.ListActive)
	if err != nil {
		return nil, err
	}

	var created []*models.DuplicateCandidate
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			metrics.ComparisonsTotal.WithLabelValues(models.TableSuppliers).Inc()

			result := scoring.Suppliers(&records[i], &records[j])
			if result.Score < threshold {
				continue
			}

			candidate, err := e.record(ctx, models.TableSuppliers, records[i].ID, records[j].ID, result.Score)
			if err != nil {
				return created, err
			}
			if candidate != nil {
				created = append(created, candidate)
			}
		}
	}

	return created, nil
}

// record stores a flagged pair unless a candidate for it already exists
// in any status. Returns nil when the pair was already recorded. A
// uniqueness conflict from the store is propagated so a lost
// check-then-insert race is reported, never silently dropped.
func (e *Engine) record(ctx context.Context, entityTable string, idA, idB uuid.UUID, score float64) (*models.DuplicateCandidate, error) {
	exists, err := e.store.ExistsPair(ctx, entityTable, idA, idB)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	candidate, err := e.store.Create(ctx, &models.DuplicateCandidate{
		EntityTable:     entityTable,
		RecordIDA:       idA,
		RecordIDB:       idB,
		SimilarityScore: score,
	})
	if err != nil {
		return nil, err
	}

	metrics.CandidatesFoundTotal.WithLabelValues(entityTable).Inc()
	if e.emitter != nil {
		e.emitter.EmitCandidateFound(ctx, candidate)
	}

	return candidate, nil
}

func sortByScore(candidates []*models.DuplicateCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].SimilarityScore > candidates[j].SimilarityScore
	})
}
