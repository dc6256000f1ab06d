package review

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/scoring"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// CandidateRepo reads and resolves duplicate candidates.
type CandidateRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*models.DuplicateCandidate, error)
	UpdateResolution(ctx context.Context, tx database.Tx, id uuid.UUID, status, reviewedBy string) error
}

// ClientRepo is the slice of the client repository the review flow needs.
type ClientRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Client, error)
	SoftDelete(ctx context.Context, tx database.Tx, id uuid.UUID, deletedBy string) error
}

type ProductRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	SoftDelete(ctx context.Context, tx database.Tx, id uuid.UUID, deletedBy string) error
}

type SupplierRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	SoftDelete(ctx context.Context, tx database.Tx, id uuid.UUID, deletedBy string) error
}

// Transactor opens (or joins) a database transaction.
type Transactor interface {
	GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, database.Tx, error)
}

// ResolutionEmitter publishes review outcomes.
type ResolutionEmitter interface {
	EmitCandidateMerged(ctx context.Context, candidate *models.DuplicateCandidate, keptID, removedID uuid.UUID, reviewedBy string)
	EmitCandidateDismissed(ctx context.Context, candidate *models.DuplicateCandidate, reviewedBy string)
}

// Service resolves duplicate candidates. Merging keeps one record of the
// pair, soft-deletes the other, and marks the candidate merged in a single
// transaction. Dismissing marks the candidate not_duplicate so later
// detection runs skip the pair.
type Service struct {
	db         Transactor
	candidates CandidateRepo
	clients    ClientRepo
	products   ProductRepo
	suppliers  SupplierRepo
	emitter    ResolutionEmitter
	logger     ectologger.Logger
}

func NewService(
	db Transactor,
	candidates CandidateRepo,
	clients ClientRepo,
	products ProductRepo,
	suppliers SupplierRepo,
	emitter ResolutionEmitter,
	logger ectologger.Logger,
) *Service {
	return &Service{
		db:         db,
		candidates: candidates,
		clients:    clients,
		products:   products,
		suppliers:  suppliers,
		emitter:    emitter,
		logger:     logger,
	}
}

// MergeResult reports the outcome of a merge.
type MergeResult struct {
	Candidate       *models.DuplicateCandidate `json:"candidate"`
	KeptRecordID    uuid.UUID                  `json:"kept_record_id"`
	RemovedRecordID uuid.UUID                  `json:"removed_record_id"`
}

// Merge resolves a pending candidate by keeping keepRecordID and
// soft-deleting the other record of the pair.
func (s *Service) Merge(ctx context.Context, candidateID, keepRecordID uuid.UUID, reviewedBy string) (*MergeResult, error) {
	ctx, span := tracing.StartSpan(ctx, "review.Service.Merge")
	defer span.End()

	candidate, err := s.candidates.Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	var removeID uuid.UUID
	switch keepRecordID {
	case candidate.RecordIDA:
		removeID = candidate.RecordIDB
	case candidate.RecordIDB:
		removeID = candidate.RecordIDA
	default:
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "record %s is not part of duplicate candidate %s", keepRecordID, candidateID)
	}

	// Both records must still exist before anything is modified.
	if err := s.checkRecord(ctx, candidate.EntityTable, keepRecordID); err != nil {
		return nil, err
	}
	if err := s.checkRecord(ctx, candidate.EntityTable, removeID); err != nil {
		return nil, err
	}

	txCtx, tx, err := s.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to merge duplicate candidate")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.softDelete(txCtx, tx, candidate.EntityTable, removeID, reviewedBy); err != nil {
		return nil, err
	}

	if err := s.candidates.UpdateResolution(txCtx, tx, candidateID, models.CandidateStatusMerged, reviewedBy); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("failed to commit merge")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to merge duplicate candidate")
	}

	candidate.Status = models.CandidateStatusMerged
	candidate.ReviewedBy = &reviewedBy

	metrics.CandidatesResolvedTotal.WithLabelValues(candidate.EntityTable, models.CandidateStatusMerged).Inc()
	if s.emitter != nil {
		s.emitter.EmitCandidateMerged(ctx, candidate, keepRecordID, removeID, reviewedBy)
	}

	s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"candidateId": candidateID,
		"keptId":      keepRecordID,
		"removedId":   removeID,
		"reviewedBy":  reviewedBy,
	}).Info("merged duplicate candidate")

	return &MergeResult{
		Candidate:       candidate,
		KeptRecordID:    keepRecordID,
		RemovedRecordID: removeID,
	}, nil
}

// Dismiss marks a pending candidate as not a duplicate. Both records stay
// active and the pair is never flagged again.
func (s *Service) Dismiss(ctx context.Context, candidateID uuid.UUID, reviewedBy string) (*models.DuplicateCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "review.Service.Dismiss")
	defer span.End()

	candidate, err := s.candidates.Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	if err := s.candidates.UpdateResolution(ctx, nil, candidateID, models.CandidateStatusNotDuplicate, reviewedBy); err != nil {
		return nil, err
	}

	candidate.Status = models.CandidateStatusNotDuplicate
	candidate.ReviewedBy = &reviewedBy

	metrics.CandidatesResolvedTotal.WithLabelValues(candidate.EntityTable, models.CandidateStatusNotDuplicate).Inc()
	if s.emitter != nil {
		s.emitter.EmitCandidateDismissed(ctx, candidate, reviewedBy)
	}

	s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"candidateId": candidateID,
		"reviewedBy":  reviewedBy,
	}).Info("dismissed duplicate candidate")

	return candidate, nil
}

// Details pairs a candidate with both of its records and a per-field
// similarity breakdown for the reviewer.
type Details struct {
	Candidate *models.DuplicateCandidate `json:"candidate"`
	RecordA   interface{}                `json:"record_a"`
	RecordB   interface{}                `json:"record_b"`
	Breakdown scoring.Result             `json:"breakdown"`
}

func (s *Service) Details(ctx context.Context, candidateID uuid.UUID) (*Details, error) {
	ctx, span := tracing.StartSpan(ctx, "review.Service.Details")
	defer span.End()

	candidate, err := s.candidates.Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	details := &Details{Candidate: candidate}

	switch candidate.EntityTable {
	case models.TableClients:
		a, err := s.clients.Get(ctx, candidate.RecordIDA)
		if err != nil {
			return nil, err
		}
		b, err := s.clients.Get(ctx, candidate.RecordIDB)
		if err != nil {
			return nil, err
		}
		details.RecordA, details.RecordB = a, b
		details.Breakdown = scoring.Clients(a, b)
	case models.TableProducts:
		a, err := s.products.Get(ctx, candidate.RecordIDA)
		if err != nil {
			return nil, err
		}
		b, err := s.products.Get(ctx, candidate.RecordIDB)
		if err != nil {
			return nil, err
		}
		details.RecordA, details.RecordB = a, b
		details.Breakdown = scoring.Products(a, b)
	case models.TableSuppliers:
		a, err := s.suppliers.Get(ctx, candidate.RecordIDA)
		if err != nil {
			return nil, err
		}
		b, err := s.suppliers.Get(ctx, candidate.RecordIDB)
		if err != nil {
			return nil, err
		}
		details.RecordA, details.RecordB = a, b
		details.Breakdown = scoring.Suppliers(a, b)
	default:
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "unknown entity table %q", candidate.EntityTable)
	}

	return details, nil
}

func (s *Service) checkRecord(ctx context.Context, entityTable string, id uuid.UUID) error {
	switch entityTable {
	case models.TableClients:
		_, err := s.clients.Get(ctx, id)
		return err
	case models.TableProducts:
		_, err := s.products.Get(ctx, id)
		return err
	case models.TableSuppliers:
		_, err := s.suppliers.Get(ctx, id)
		return err
	default:
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "unknown entity table %q", entityTable)
	}
}

func (s *Service) softDelete(ctx context.Context, tx database.Tx, entityTable string, id uuid.UUID, deletedBy string) error {
	switch entityTable {
	case models.TableClients:
		return s.clients.SoftDelete(ctx, tx, id, deletedBy)
	case models.TableProducts:
		return s.products.SoftDelete(ctx, tx, id, deletedBy)
	case models.TableSuppliers:
		return s.suppliers.SoftDelete(ctx, tx, id, deletedBy)
	default:
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "unknown entity table %q", entityTable)
	}
}
