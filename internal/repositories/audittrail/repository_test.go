package audittrail

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
)

type captureDB struct {
	database.DB
	query string
	args  []any
}

func (f *captureDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.query = query
	f.args = args
	return nil, nil
}

func TestInsertBindsEveryColumn(t *testing.T) {
	db := &captureDB{}
	repo := NewRepository(db, ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))

	entry := &models.AuditEntry{
		TableName: "clients",
		RecordID:  uuid.New(),
		Action:    models.AuditActionUpdate,
		NewValues: []byte(`{"name":"Joao Silva"}`),
		ChangedBy: "maria.santos",
	}
	require.NoError(t, repo.Insert(context.Background(), nil, entry))

	assert.Contains(t, db.query, "audit_trail")
	require.Len(t, db.args, 7, "one bound value per column")
	assert.Equal(t, models.AuditActionUpdate, db.args[2])
	assert.Equal(t, "maria.santos", db.args[5])
}

func TestBuildListQueryDefaults(t *testing.T) {
	query, args := buildListQuery(Filter{})

	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "ORDER BY changed_at DESC, id DESC")
	assert.Contains(t, query, "LIMIT")
	assert.Contains(t, args, 100)
}

func TestBuildListQueryAppliesAllFilters(t *testing.T) {
	recordID := uuid.New()
	query, args := buildListQuery(Filter{
		TableName: "clients",
		RecordID:  &recordID,
		Action:    "update",
		ChangedBy: "maria.santos",
		Limit:     25,
		Offset:    50,
	})

	assert.Contains(t, query, "table_name =")
	assert.Contains(t, query, "record_id =")
	assert.Contains(t, query, "action =")
	assert.Contains(t, query, "changed_by =")
	assert.Contains(t, query, "OFFSET")
	assert.Contains(t, args, "clients")
	assert.Contains(t, args, recordID)
	assert.Contains(t, args, "update")
	assert.Contains(t, args, "maria.santos")
	assert.Contains(t, args, 25)
	assert.Contains(t, args, 50)
}

func TestBuildListQueryClampsLimit(t *testing.T) {
	query, args := buildListQuery(Filter{Limit: 5000})

	assert.True(t, strings.Contains(query, "LIMIT"))
	assert.Contains(t, args, 100)
	assert.NotContains(t, args, 5000)
}
