// Package models defines the core master data records and review types
package models

import (
	"time"

	"github.com/google/uuid"
)

// Record status values shared by all master data tables
const (
	RecordStatusActive   = "active"
	RecordStatusInactive = "inactive"
	RecordStatusDeleted  = "deleted"
)

// Entity table names used for duplicate detection and auditing
const (
	TableClients   = "clients"
	TableProducts  = "products"
	TableSuppliers = "suppliers"
)

// EntityTables lists every table that participates in duplicate detection
var EntityTables = []string{TableClients, TableProducts, TableSuppliers}

// IsEntityTable reports whether name is a known master data table
func IsEntityTable(name string) bool {
	for _, t := range EntityTables {
		if t == name {
			return true
		}
	}
	return false
}

// Client is a customer master data record
type Client struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	DocumentType   *string    `db:"document_type" json:"document_type,omitempty"`
	DocumentNumber *string    `db:"document_number" json:"document_number,omitempty"`
	Email          *string    `db:"email" json:"email,omitempty"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	Address        *string    `db:"address" json:"address,omitempty"`
	City           *string    `db:"city" json:"city,omitempty"`
	State          *string    `db:"state" json:"state,omitempty"`
	ZipCode        *string    `db:"zip_code" json:"zip_code,omitempty"`
	Category       *string    `db:"category" json:"category,omitempty"`
	Status         string     `db:"status" json:"status"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	CreatedBy      *string    `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy      *string    `db:"updated_by" json:"updated_by,omitempty"`
	DeletedAt      *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// Supplier is a vendor master data record
type Supplier struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	DocumentType   *string    `db:"document_type" json:"document_type,omitempty"`
	DocumentNumber *string    `db:"document_number" json:"document_number,omitempty"`
	Email          *string    `db:"email" json:"email,omitempty"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	Address        *string    `db:"address" json:"address,omitempty"`
	City           *string    `db:"city" json:"city,omitempty"`
	State          *string    `db:"state" json:"state,omitempty"`
	ZipCode        *string    `db:"zip_code" json:"zip_code,omitempty"`
	ContactPerson  *string    `db:"contact_person" json:"contact_person,omitempty"`
	Category       *string    `db:"category" json:"category,omitempty"`
	Status         string     `db:"status" json:"status"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	CreatedBy      *string    `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy      *string    `db:"updated_by" json:"updated_by,omitempty"`
	DeletedAt      *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// Product is a product master data record
type Product struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Code          string     `db:"code" json:"code"`
	Name          string     `db:"name" json:"name"`
	Description   *string    `db:"description" json:"description,omitempty"`
	Category      *string    `db:"category" json:"category,omitempty"`
	UnitPrice     *float64   `db:"unit_price" json:"unit_price,omitempty"`
	UnitOfMeasure *string    `db:"unit_of_measure" json:"unit_of_measure,omitempty"`
	SupplierID    *uuid.UUID `db:"supplier_id" json:"supplier_id,omitempty"`
	Status        string     `db:"status" json:"status"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
	CreatedBy     *string    `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy     *string    `db:"updated_by" json:"updated_by,omitempty"`
	DeletedAt     *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}
