package scoring

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/clover/pkg/models"
)

func strPtr(s string) *string {
	return &s
}

func client(name string, mutate func(*models.Client)) *models.Client {
	c := &models.Client{
		ID:     uuid.New(),
		Name:   name,
		Status: models.RecordStatusActive,
	}
	if mutate != nil {
		mutate(c)
	}
	return c
}

func TestClientsIdenticalRecordsScoreOne(t *testing.T) {
	a := client("Joao Silva", func(c *models.Client) {
		c.DocumentNumber = strPtr("123.456.789-09")
		c.Email = strPtr("joao@example.com")
		c.Phone = strPtr("(11) 98765-4321")
	})
	b := client("Joao Silva", func(c *models.Client) {
		c.DocumentNumber = strPtr("12345678909")
		c.Email = strPtr("JOAO@example.com")
		c.Phone = strPtr("11987654321")
	})

	result := Clients(a, b)
	assert.InDelta(t, 1.0, result.Score, 1e-9)
	assert.InDelta(t, 1.0, result.Fields["document_number"], 1e-9)
	assert.InDelta(t, 1.0, result.Fields["phone"], 1e-9)
}

func TestClientsSymmetric(t *testing.T) {
	a := client("Joao Silva", func(c *models.Client) {
		c.Email = strPtr("joao.silva@example.com")
	})
	b := client("Joao da Silva", func(c *models.Client) {
		c.Email = strPtr("jsilva@example.com")
	})

	assert.Equal(t, Clients(a, b).Score, Clients(b, a).Score)
}

func TestClientsMissingFieldsDropFromWeighting(t *testing.T) {
	// Only name is comparable, so the score is the name similarity alone.
	a := client("Joao Silva", nil)
	b := client("Joao Silva", func(c *models.Client) {
		c.Email = strPtr("joao@example.com")
	})

	result := Clients(a, b)
	assert.InDelta(t, 1.0, result.Score, 1e-9)
	assert.NotContains(t, result.Fields, "email")
	assert.NotContains(t, result.Fields, "document_number")
}

func TestClientsDocumentMismatchLowersScore(t *testing.T) {
	a := client("Joao Silva", func(c *models.Client) {
		c.DocumentNumber = strPtr("123.456.789-09")
	})
	b := client("Joao Silva", func(c *models.Client) {
		c.DocumentNumber = strPtr("987.654.321-00")
	})

	result := Clients(a, b)
	// name 1.0 * 0.4 + document 0.0 * 0.3 over total weight 0.7
	assert.InDelta(t, 0.4/0.7, result.Score, 1e-9)
	assert.Equal(t, 0.0, result.Fields["document_number"])
}

func TestClientsAlphanumericDocumentsStayDistinct(t *testing.T) {
	// Foreign identifiers share a numeric tail but differ in the letter
	// prefix, so they must not count as an exact document match.
	a := client("Joao Silva", func(c *models.Client) {
		c.DocumentNumber = strPtr("AB123456")
	})
	b := client("Joao Silva", func(c *models.Client) {
		c.DocumentNumber = strPtr("CD123456")
	})

	result := Clients(a, b)
	assert.Equal(t, 0.0, result.Fields["document_number"])
	assert.InDelta(t, 0.4/0.7, result.Score, 1e-9)
}

func TestClientsNearDuplicateNamesScoreHigh(t *testing.T) {
	a := client("Joao Silva", func(c *models.Client) {
		c.Email = strPtr("joao.silva@example.com")
	})
	b := client("Joao da Silva", func(c *models.Client) {
		c.Email = strPtr("joao.silva@example.com")
	})

	result := Clients(a, b)
	assert.Greater(t, result.Score, 0.8)
}

func TestProductsCodeIsExactMatch(t *testing.T) {
	a := &models.Product{ID: uuid.New(), Code: "WID-001", Name: "Widget"}
	b := &models.Product{ID: uuid.New(), Code: "wid-001", Name: "Widget"}

	result := Products(a, b)
	assert.InDelta(t, 1.0, result.Score, 1e-9)
	assert.InDelta(t, 1.0, result.Fields["code"], 1e-9)
}

func TestProductsDifferentCodesSimilarNames(t *testing.T) {
	a := &models.Product{ID: uuid.New(), Code: "WID-001", Name: "Widget", Description: strPtr("Standard widget")}
	b := &models.Product{ID: uuid.New(), Code: "GAD-002", Name: "Gadget", Description: strPtr("Standard gadget")}

	result := Products(a, b)
	assert.Equal(t, 0.0, result.Fields["code"])
	assert.Less(t, result.Score, 0.8)
	assert.Greater(t, result.Score, 0.0)
}

func TestSuppliersContactPersonContributes(t *testing.T) {
	a := &models.Supplier{ID: uuid.New(), Name: "Acme Corp", ContactPerson: strPtr("Maria Santos")}
	b := &models.Supplier{ID: uuid.New(), Name: "Acme Corp", ContactPerson: strPtr("Maria Santos")}

	result := Suppliers(a, b)
	assert.InDelta(t, 1.0, result.Score, 1e-9)
	assert.Contains(t, result.Fields, "contact_person")
}

func TestSuppliersNameOnly(t *testing.T) {
	a := &models.Supplier{ID: uuid.New(), Name: "Acme Corporation"}
	b := &models.Supplier{ID: uuid.New(), Name: "Acme Corp"}

	result := Suppliers(a, b)
	assert.Greater(t, result.Score, 0.5)
	assert.Less(t, result.Score, 1.0)
	assert.Len(t, result.Fields, 1)
}
