// Package scoring computes weighted similarity scores between pairs of
// master data records. Each entity table has its own field weights.
// Optional fields only contribute when both records carry a value, so
// the result is a weighted mean over the comparable fields.
package scoring

import (
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
	"github.com/Ramsey-B/clover/pkg/similarity"
)

// Field weights per entity table
const (
	clientNameWeight     = 0.4
	clientDocumentWeight = 0.3
	clientEmailWeight    = 0.2
	clientPhoneWeight    = 0.1

	productCodeWeight        = 0.4
	productNameWeight        = 0.4
	productDescriptionWeight = 0.2

	supplierNameWeight     = 0.4
	supplierDocumentWeight = 0.3
	supplierEmailWeight    = 0.2
	supplierContactWeight  = 0.1
)

// Result holds an overall score and the per-field similarities that
// produced it.
type Result struct {
	Score  float64            `json:"score"`
	Fields map[string]float64 `json:"fields"`
}

type accumulator struct {
	weighted float64
	total    float64
	fields   map[string]float64
}

func newAccumulator() *accumulator {
	return &accumulator{fields: make(map[string]float64)}
}

func (a *accumulator) add(field string, sim, weight float64) {
	a.weighted += sim * weight
	a.total += weight
	a.fields[field] = sim
}

func (a *accumulator) result() Result {
	if a.total == 0 {
		return Result{Score: 0, Fields: a.fields}
	}
	return Result{Score: a.weighted / a.total, Fields: a.fields}
}

func bothSet(a, b *string) bool {
	return a != nil && *a != "" && b != nil && *b != ""
}

// Clients scores a pair of client records
func Clients(a, b *models.Client) Result {
	acc := newAccumulator()

	acc.add("name", similarity.Text(a.Name, b.Name), clientNameWeight)

	if bothSet(a.DocumentNumber, b.DocumentNumber) {
		sim := 0.0
		if normalizers.NormalizeDocument(*a.DocumentNumber) == normalizers.NormalizeDocument(*b.DocumentNumber) {
			sim = 1.0
		}
		acc.add("document_number", sim, clientDocumentWeight)
	}

	if bothSet(a.Email, b.Email) {
		acc.add("email", similarity.Text(*a.Email, *b.Email), clientEmailWeight)
	}

	if bothSet(a.Phone, b.Phone) {
		acc.add("phone", similarity.Digits(*a.Phone, *b.Phone), clientPhoneWeight)
	}

	return acc.result()
}

// Products scores a pair of product records
func Products(a, b *models.Product) Result {
	acc := newAccumulator()

	if a.Code != "" && b.Code != "" {
		acc.add("code", similarity.Exact(a.Code, b.Code), productCodeWeight)
	}

	acc.add("name", similarity.Text(a.Name, b.Name), productNameWeight)

	if bothSet(a.Description, b.Description) {
		acc.add("description", similarity.Text(*a.Description, *b.Description), productDescriptionWeight)
	}

	return acc.result()
}

// Suppliers scores a pair of supplier records
func Suppliers(a, b *models.Supplier) Result {
	acc := newAccumulator()

	acc.add("name", similarity.Text(a.Name, b.Name), supplierNameWeight)

	if bothSet(a.DocumentNumber, b.DocumentNumber) {
		sim := 0.0
		if normalizers.NormalizeDocument(*a.DocumentNumber) == normalizers.NormalizeDocument(*b.DocumentNumber) {
			sim = 1.0
		}
		acc.add("document_number", sim, supplierDocumentWeight)
	}

	if bothSet(a.Email, b.Email) {
		acc.add("email", similarity.Text(*a.Email, *b.Email), supplierEmailWeight)
	}

	if bothSet(a.ContactPerson, b.ContactPerson) {
		acc.add("contact_person", similarity.Text(*a.ContactPerson, *b.ContactPerson), supplierContactWeight)
	}

	return acc.result()
}
