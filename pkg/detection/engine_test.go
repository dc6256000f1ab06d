package detection

import (
	"context"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type fakeClientSource struct {
	clients []models.Client
	err     error
}

func (f *fakeClientSource) ListActive(ctx context.Context, limit, offset int) ([]models.Client, error) {
	return page(f.clients, limit, offset), f.err
}

type fakeProductSource struct {
	products []models.Product
}

func (f *fakeProductSource) ListActive(ctx context.Context, limit, offset int) ([]models.Product, error) {
	return page(f.products, limit, offset), nil
}

type fakeSupplierSource struct {
	suppliers []models.Supplier
}

func (f *fakeSupplierSource) ListActive(ctx context.Context, limit, offset int) ([]models.Supplier, error) {
	return page(f.suppliers, limit, offset), nil
}

type fakeStore struct {
	existing map[string]bool
	created  []*models.DuplicateCandidate
}

func newFakeStore() *fakeStore {
	return &fakeStore{existing: make(map[string]bool)}
}

func pairKey(table string, a, b uuid.UUID) string {
	oa, ob := models.OrderPair(a, b)
	return table + "/" + oa.String() + "/" + ob.String()
}

func (f *fakeStore) ExistsPair(ctx context.Context, entityTable string, recordA, recordB uuid.UUID) (bool, error) {
	return f.existing[pairKey(entityTable, recordA, recordB)], nil
}

func (f *fakeStore) Create(ctx context.Context, candidate *models.DuplicateCandidate) (*models.DuplicateCandidate, error) {
	key := pairKey(candidate.EntityTable, candidate.RecordIDA, candidate.RecordIDB)
	if f.existing[key] {
		return nil, httperror.NewHTTPError(http.StatusConflict, "this pair has already been flagged")
	}
	f.existing[key] = true
	candidate.ID = uuid.New()
	candidate.Status = models.CandidateStatusPending
	f.created = append(f.created, candidate)
	return candidate, nil
}

type fakeEmitter struct {
	found []*models.DuplicateCandidate
}

func (f *fakeEmitter) EmitCandidateFound(ctx context.Context, candidate *models.DuplicateCandidate) {
	f.found = append(f.found, candidate)
}

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func strPtr(s string) *string {
	return &s
}

func newEngine(clients []models.Client, products []models.Product, suppliers []models.Supplier, store *fakeStore) (*Engine, *fakeEmitter) {
	emitter := &fakeEmitter{}
	engine := NewEngine(
		&fakeClientSource{clients: clients},
		&fakeProductSource{products: products},
		&fakeSupplierSource{suppliers: suppliers},
		store,
		emitter,
		0,
		0,
		noopLogger(),
	)
	return engine, emitter
}

func TestDetectFlagsSimilarClients(t *testing.T) {
	clients := []models.Client{
		{ID: uuid.New(), Name: "Joao Silva", Email: strPtr("joao.silva@example.com"), Status: models.RecordStatusActive},
		{ID: uuid.New(), Name: "Joao da Silva", Email: strPtr("joao.silva@example.com"), Status: models.RecordStatusActive},
		{ID: uuid.New(), Name: "Maria Oliveira", Email: strPtr("maria@example.com"), Status: models.RecordStatusActive},
	}

	store := newFakeStore()
	engine, emitter := newEngine(clients, nil, nil, store)

	created, err := engine.Detect(context.Background(), models.TableClients, 0)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, models.TableClients, created[0].EntityTable)
	assert.GreaterOrEqual(t, created[0].SimilarityScore, 0.8)
	assert.Equal(t, models.CandidateStatusPending, created[0].Status)
	assert.Len(t, emitter.found, 1)
}

func TestDetectMatchingDocumentNumbers(t *testing.T) {
	clients := []models.Client{
		{ID: uuid.New(), Name: "Joao Silva", DocumentNumber: strPtr("123.456.789-01"), Status: models.RecordStatusActive},
		{ID: uuid.New(), Name: "Joao Silva", DocumentNumber: strPtr("12345678901"), Status: models.RecordStatusActive},
	}

	store := newFakeStore()
	engine, _ := newEngine(clients, nil, nil, store)

	created, err := engine.Detect(context.Background(), models.TableClients, 0)
	require.NoError(t, err)
	require.Len(t, created, 1, "document numbers must match exactly after normalization")
	assert.GreaterOrEqual(t, created[0].SimilarityScore, 0.8)
}

func TestDetectIsIdempotent(t *testing.T) {
	clients := []models.Client{
		{ID: uuid.New(), Name: "Joao Silva", Status: models.RecordStatusActive},
		{ID: uuid.New(), Name: "Joao Silva", Status: models.RecordStatusActive},
	}

	store := newFakeStore()
	engine, _ := newEngine(clients, nil, nil, store)

	created, err := engine.Detect(context.Background(), models.TableClients, 0)
	require.NoError(t, err)
	assert.Len(t, created, 1)

	created, err = engine.Detect(context.Background(), models.TableClients, 0)
	require.NoError(t, err)
	assert.Empty(t, created, "a second run must not flag the same pair again")
	assert.Len(t, store.created, 1)
}

func TestDetectProductsWithDifferentCodesNotFlagged(t *testing.T) {
	products := []models.Product{
		{ID: uuid.New(), Code: "WID-001", Name: "Widget", Status: models.RecordStatusActive},
		{ID: uuid.New(), Code: "GAD-002", Name: "Gadget", Status: models.RecordStatusActive},
	}

	store := newFakeStore()
	engine, _ := newEngine(nil, products, nil, store)

	created, err := engine.Detect(context.Background(), models.TableProducts, 0)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestDetectProductsSameCodeFlagged(t *testing.T) {
	products := []models.Product{
		{ID: uuid.New(), Code: "WID-001", Name: "Widget", Status: models.RecordStatusActive},
		{ID: uuid.New(), Code: "wid-001", Name: "Widgets", Status: models.RecordStatusActive},
	}

	store := newFakeStore()
	engine, _ := newEngine(nil, products, nil, store)

	created, err := engine.Detect(context.Background(), models.TableProducts, 0)
	require.NoError(t, err)
	assert.Len(t, created, 1)
}

func TestDetectUnknownTableRejected(t *testing.T) {
	engine, _ := newEngine(nil, nil, nil, newFakeStore())

	_, err := engine.Detect(context.Background(), "invoices", 0)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
}

func TestDetectInvalidThresholdRejected(t *testing.T) {
	engine, _ := newEngine(nil, nil, nil, newFakeStore())

	for _, threshold := range []float64{1.5, -0.5} {
		_, err := engine.Detect(context.Background(), models.TableClients, threshold)
		require.Error(t, err, "threshold %v", threshold)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	}

	_, err := engine.DetectAll(context.Background(), -0.5)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
}

func TestDetectThresholdMonotonicity(t *testing.T) {
	clients := []models.Client{
		{ID: uuid.New(), Name: "Joao Silva", Status: models.RecordStatusActive},
		{ID: uuid.New(), Name: "Joao da Silva", Status: models.RecordStatusActive},
		{ID: uuid.New(), Name: "Joana Silveira", Status: models.RecordStatusActive},
	}

	lowEngine, _ := newEngine(clients, nil, nil, newFakeStore())
	low, err := lowEngine.Detect(context.Background(), models.TableClients, 0.5)
	require.NoError(t, err)

	highEngine, _ := newEngine(clients, nil, nil, newFakeStore())
	high, err := highEngine.Detect(context.Background(), models.TableClients, 0.95)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(low), len(high), "raising the threshold must never find more pairs")
}

func TestDetectResultsOrderedByScore(t *testing.T) {
	clients := []models.Client{
		{ID: uuid.New(), Name: "Joao Silva", Status: models.RecordStatusActive},
		{ID: uuid.New(), Name: "Joao Silva", Status: models.RecordStatusActive},
		{ID: uuid.New(), Name: "Joao da Silva", Status: models.RecordStatusActive},
	}

	engine, _ := newEngine(clients, nil, nil, newFakeStore())
	created, err := engine.Detect(context.Background(), models.TableClients, 0.5)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(created), 2)
	for i := 1; i < len(created); i++ {
		assert.GreaterOrEqual(t, created[i-1].SimilarityScore, created[i].SimilarityScore)
	}
}

func TestDetectAllCoversEveryTable(t *testing.T) {
	clients := []models.Client{
		{ID: uuid.New(), Name: "Joao Silva", Status: models.RecordStatusActive},
		{ID: uuid.New(), Name: "Joao Silva", Status: models.RecordStatusActive},
	}
	suppliers := []models.Supplier{
		{ID: uuid.New(), Name: "Acme Corp", Status: models.RecordStatusActive},
		{ID: uuid.New(), Name: "Acme Corp.", Status: models.RecordStatusActive},
	}

	store := newFakeStore()
	engine, _ := newEngine(clients, nil, suppliers, store)

	summaries, err := engine.DetectAll(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, summaries[models.TableClients].NewPairs)
	assert.Equal(t, 0, summaries[models.TableProducts].NewPairs)
	assert.Equal(t, 1, summaries[models.TableSuppliers].NewPairs)
}

func TestDetectAllIsolatesTableFailures(t *testing.T) {
	suppliers := []models.Supplier{
		{ID: uuid.New(), Name: "Acme Corp", Status: models.RecordStatusActive},
		{ID: uuid.New(), Name: "Acme Corp.", Status: models.RecordStatusActive},
	}

	store := newFakeStore()
	emitter := &fakeEmitter{}
	engine := NewEngine(
		&fakeClientSource{err: httperror.NewHTTPError(http.StatusInternalServerError, "clients unavailable")},
		&fakeProductSource{},
		&fakeSupplierSource{suppliers: suppliers},
		store,
		emitter,
		0,
		0,
		noopLogger(),
	)

	summaries, err := engine.DetectAll(context.Background(), 0)
	require.NoError(t, err)
	assert.NotEmpty(t, summaries[models.TableClients].Error)
	assert.Equal(t, 1, summaries[models.TableSuppliers].NewPairs, "supplier detection must run despite the client failure")
	assert.Empty(t, summaries[models.TableSuppliers].Error)
}

func TestDetectComparesPairsAcrossPages(t *testing.T) {
	// The duplicate pair lands on different pages, so the run must drain
	// every page before comparing.
	clients := []models.Client{
		{ID: uuid.New(), Name: "Joao Silva", Status: models.RecordStatusActive},
		{ID: uuid.New(), Name: "Maria Oliveira", Status: models.RecordStatusActive},
		{ID: uuid.New(), Name: "Joao Silva", Status: models.RecordStatusActive},
	}

	store := newFakeStore()
	emitter := &fakeEmitter{}
	engine := NewEngine(&fakeClientSource{clients: clients}, &fakeProductSource{}, &fakeSupplierSource{}, store, emitter, 0, 2, noopLogger())

	created, err := engine.Detect(context.Background(), models.TableClients, 0)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, clients[0].ID, created[0].RecordIDA)
}

func TestDetectSurfacesInsertRaceConflict(t *testing.T) {
	clients := []models.Client{
		{ID: uuid.New(), Name: "Joao Silva", Status: models.RecordStatusActive},
		{ID: uuid.New(), Name: "Joao Silva", Status: models.RecordStatusActive},
	}

	// Another writer wins the insert race between the existence check
	// and the insert.
	racing := &racingStore{}
	emitter := &fakeEmitter{}
	engine := NewEngine(&fakeClientSource{clients: clients}, &fakeProductSource{}, &fakeSupplierSource{}, racing, emitter, 0, 0, noopLogger())

	_, err := engine.Detect(context.Background(), models.TableClients, 0)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))
	assert.Empty(t, emitter.found)
}

type racingStore struct{}

func (r *racingStore) ExistsPair(ctx context.Context, entityTable string, recordA, recordB uuid.UUID) (bool, error) {
	return false, nil
}

func (r *racingStore) Create(ctx context.Context, candidate *models.DuplicateCandidate) (*models.DuplicateCandidate, error) {
	return nil, httperror.NewHTTPError(http.StatusConflict, "this pair has already been flagged")
}
