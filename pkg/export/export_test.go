package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func strPtr(s string) *string {
	return &s
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	format, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, format)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}

func TestClientsCSV(t *testing.T) {
	clients := []models.Client{
		{
			ID:             uuid.New(),
			Name:           "Joao Silva",
			DocumentNumber: strPtr("123.456.789-09"),
			Email:          strPtr("joao@example.com"),
			Status:         models.RecordStatusActive,
			CreatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:        uuid.New(),
			Name:      "Maria, Ltda",
			Status:    models.RecordStatusActive,
			CreatedAt: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Clients(&buf, FormatCSV, clients))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "name", rows[0][1])
	assert.Equal(t, "Joao Silva", rows[1][1])
	assert.Equal(t, "123.456.789-09", rows[1][2])
	assert.Equal(t, "Maria, Ltda", rows[2][1], "commas in values must survive the round trip")
	assert.Equal(t, "", rows[2][2])
}

func TestClientsJSON(t *testing.T) {
	clients := []models.Client{
		{ID: uuid.New(), Name: "Joao Silva", Status: models.RecordStatusActive},
	}

	var buf bytes.Buffer
	require.NoError(t, Clients(&buf, FormatJSON, clients))

	var decoded []models.Client
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, clients[0].ID, decoded[0].ID)
	assert.Equal(t, "Joao Silva", decoded[0].Name)
}

func TestProductsCSVFormatsPrice(t *testing.T) {
	price := 19.9
	products := []models.Product{
		{ID: uuid.New(), Code: "WID-001", Name: "Widget", UnitPrice: &price, Status: models.RecordStatusActive},
	}

	var buf bytes.Buffer
	require.NoError(t, Products(&buf, FormatCSV, products))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "19.90", rows[1][5])
}

func TestSuppliersCSV(t *testing.T) {
	suppliers := []models.Supplier{
		{
			ID:            uuid.New(),
			Name:          "Acme Corp",
			ContactPerson: strPtr("Jane Roe"),
			Status:        models.RecordStatusActive,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Suppliers(&buf, FormatCSV, suppliers))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Jane Roe", rows[1][5])
}

func TestFileName(t *testing.T) {
	name := FormatCSV.FileName(models.TableClients)
	assert.True(t, strings.HasPrefix(name, "clients_"))
	assert.True(t, strings.HasSuffix(name, ".csv"))
}
