package review

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
)

type fakeTx struct {
	database.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (t *fakeTx) IsOpen() bool {
	return !t.committed && !t.rolledBack
}

type fakeTransactor struct {
	tx *fakeTx
}

func (f *fakeTransactor) GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, database.Tx, error) {
	f.tx = &fakeTx{}
	return ctx, f.tx, nil
}

type fakeCandidateRepo struct {
	candidates map[uuid.UUID]*models.DuplicateCandidate
	resolved   map[uuid.UUID]string
}

func newFakeCandidateRepo(candidates ...*models.DuplicateCandidate) *fakeCandidateRepo {
	repo := &fakeCandidateRepo{
		candidates: make(map[uuid.UUID]*models.DuplicateCandidate),
		resolved:   make(map[uuid.UUID]string),
	}
	for _, c := range candidates {
		repo.candidates[c.ID] = c
	}
	return repo
}

func (f *fakeCandidateRepo) Get(ctx context.Context, id uuid.UUID) (*models.DuplicateCandidate, error) {
	candidate, ok := f.candidates[id]
	if !ok {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "duplicate candidate %s was not found", id)
	}
	copied := *candidate
	return &copied, nil
}

func (f *fakeCandidateRepo) UpdateResolution(ctx context.Context, tx database.Tx, id uuid.UUID, status, reviewedBy string) error {
	candidate, ok := f.candidates[id]
	if !ok || candidate.Status != models.CandidateStatusPending {
		return httperror.NewHTTPErrorf(http.StatusConflict, "duplicate candidate %s is not pending review", id)
	}
	candidate.Status = status
	candidate.ReviewedBy = &reviewedBy
	f.resolved[id] = status
	return nil
}

type fakeClientRepo struct {
	clients map[uuid.UUID]*models.Client
	deleted []uuid.UUID
}

func newFakeClientRepo(clients ...*models.Client) *fakeClientRepo {
	repo := &fakeClientRepo{clients: make(map[uuid.UUID]*models.Client)}
	for _, c := range clients {
		repo.clients[c.ID] = c
	}
	return repo
}

func (f *fakeClientRepo) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	client, ok := f.clients[id]
	if !ok {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "client %s was not found", id)
	}
	return client, nil
}

func (f *fakeClientRepo) SoftDelete(ctx context.Context, tx database.Tx, id uuid.UUID, deletedBy string) error {
	if _, ok := f.clients[id]; !ok {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "client %s was not found", id)
	}
	f.deleted = append(f.deleted, id)
	f.clients[id].Status = models.RecordStatusDeleted
	return nil
}

type fakeProductRepo struct{}

func (f *fakeProductRepo) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "product %s was not found", id)
}

func (f *fakeProductRepo) SoftDelete(ctx context.Context, tx database.Tx, id uuid.UUID, deletedBy string) error {
	return nil
}

type fakeSupplierRepo struct{}

func (f *fakeSupplierRepo) Get(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "supplier %s was not found", id)
}

func (f *fakeSupplierRepo) SoftDelete(ctx context.Context, tx database.Tx, id uuid.UUID, deletedBy string) error {
	return nil
}

type fakeResolutionEmitter struct {
	merged    []*models.DuplicateCandidate
	dismissed []*models.DuplicateCandidate
}

func (f *fakeResolutionEmitter) EmitCandidateMerged(ctx context.Context, candidate *models.DuplicateCandidate, keptID, removedID uuid.UUID, reviewedBy string) {
	f.merged = append(f.merged, candidate)
}

func (f *fakeResolutionEmitter) EmitCandidateDismissed(ctx context.Context, candidate *models.DuplicateCandidate, reviewedBy string) {
	f.dismissed = append(f.dismissed, candidate)
}

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func strPtr(s string) *string {
	return &s
}

type fixture struct {
	service    *Service
	transactor *fakeTransactor
	candidates *fakeCandidateRepo
	clients    *fakeClientRepo
	emitter    *fakeResolutionEmitter
	candidate  *models.DuplicateCandidate
	clientA    *models.Client
	clientB    *models.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clientA := &models.Client{ID: uuid.New(), Name: "Joao Silva", Status: models.RecordStatusActive}
	clientB := &models.Client{ID: uuid.New(), Name: "Joao da Silva", Status: models.RecordStatusActive}

	idA, idB := models.OrderPair(clientA.ID, clientB.ID)
	candidate := &models.DuplicateCandidate{
		ID:              uuid.New(),
		EntityTable:     models.TableClients,
		RecordIDA:       idA,
		RecordIDB:       idB,
		SimilarityScore: 0.91,
		Status:          models.CandidateStatusPending,
	}

	transactor := &fakeTransactor{}
	candidates := newFakeCandidateRepo(candidate)
	clients := newFakeClientRepo(clientA, clientB)
	emitter := &fakeResolutionEmitter{}

	service := NewService(transactor, candidates, clients, &fakeProductRepo{}, &fakeSupplierRepo{}, emitter, noopLogger())

	return &fixture{
		service:    service,
		transactor: transactor,
		candidates: candidates,
		clients:    clients,
		emitter:    emitter,
		candidate:  candidate,
		clientA:    clientA,
		clientB:    clientB,
	}
}

func TestMergeKeepsChosenRecordAndDeletesOther(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.Merge(context.Background(), f.candidate.ID, f.clientA.ID, "reviewer@example.com")
	require.NoError(t, err)

	assert.Equal(t, f.clientA.ID, result.KeptRecordID)
	assert.Equal(t, f.clientB.ID, result.RemovedRecordID)
	assert.Equal(t, models.CandidateStatusMerged, result.Candidate.Status)
	require.NotNil(t, result.Candidate.ReviewedBy)
	assert.Equal(t, "reviewer@example.com", *result.Candidate.ReviewedBy)

	require.Len(t, f.clients.deleted, 1)
	assert.Equal(t, f.clientB.ID, f.clients.deleted[0])
	assert.Equal(t, models.RecordStatusActive, f.clientA.Status)

	require.NotNil(t, f.transactor.tx)
	assert.True(t, f.transactor.tx.committed)
	assert.Len(t, f.emitter.merged, 1)
}

func TestMergeRejectsRecordOutsidePair(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Merge(context.Background(), f.candidate.ID, uuid.New(), "reviewer@example.com")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	assert.Empty(t, f.clients.deleted)
}

func TestMergeUnknownCandidate(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Merge(context.Background(), uuid.New(), f.clientA.ID, "reviewer@example.com")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
}

func TestMergeFailsWhenRecordMissing(t *testing.T) {
	f := newFixture(t)
	delete(f.clients.clients, f.clientB.ID)

	_, err := f.service.Merge(context.Background(), f.candidate.ID, f.clientA.ID, "reviewer@example.com")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	assert.Empty(t, f.clients.deleted)
	assert.Equal(t, models.CandidateStatusPending, f.candidates.candidates[f.candidate.ID].Status)
}

func TestMergeAlreadyResolvedCandidate(t *testing.T) {
	f := newFixture(t)
	f.candidates.candidates[f.candidate.ID].Status = models.CandidateStatusNotDuplicate

	_, err := f.service.Merge(context.Background(), f.candidate.ID, f.clientA.ID, "reviewer@example.com")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))
}

func TestDismissMarksNotDuplicate(t *testing.T) {
	f := newFixture(t)

	candidate, err := f.service.Dismiss(context.Background(), f.candidate.ID, "reviewer@example.com")
	require.NoError(t, err)

	assert.Equal(t, models.CandidateStatusNotDuplicate, candidate.Status)
	assert.Empty(t, f.clients.deleted, "dismiss must not touch either record")
	assert.Equal(t, models.RecordStatusActive, f.clientA.Status)
	assert.Equal(t, models.RecordStatusActive, f.clientB.Status)
	assert.Len(t, f.emitter.dismissed, 1)
}

func TestDismissAlreadyResolvedCandidate(t *testing.T) {
	f := newFixture(t)
	f.candidates.candidates[f.candidate.ID].Status = models.CandidateStatusMerged

	_, err := f.service.Dismiss(context.Background(), f.candidate.ID, "reviewer@example.com")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))
}

func TestDetailsReturnsRecordsAndBreakdown(t *testing.T) {
	f := newFixture(t)
	f.clientA.Email = strPtr("joao@example.com")
	f.clientB.Email = strPtr("joao@example.com")

	details, err := f.service.Details(context.Background(), f.candidate.ID)
	require.NoError(t, err)

	assert.Equal(t, f.candidate.ID, details.Candidate.ID)
	assert.NotNil(t, details.RecordA)
	assert.NotNil(t, details.RecordB)
	assert.Greater(t, details.Breakdown.Score, 0.8)
	assert.Equal(t, 1.0, details.Breakdown.Fields["email"])
	assert.Contains(t, details.Breakdown.Fields, "name")
}
