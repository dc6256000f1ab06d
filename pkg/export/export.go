package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Gobusters/ectoerror/httperror"

	"github.com/Ramsey-B/clover/pkg/models"
)

// Format selects the wire representation of an export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format query parameter. An empty value
// defaults to CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", httperror.NewHTTPErrorf(http.StatusBadRequest, "unsupported export format %q", raw)
	}
}

// ContentType returns the response content type for the format.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// FileName builds a timestamped download name for an entity export.
func (f Format) FileName(entityTable string) string {
	return fmt.Sprintf("%s_%s.%s", entityTable, time.Now().UTC().Format("20060102T150405Z"), f)
}

// Clients writes the client list to w in the requested format.
func Clients(w io.Writer, format Format, clients []models.Client) error {
	if format == FormatJSON {
		return writeJSON(w, clients)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "name", "document_number", "email", "phone", "status", "created_at"}); err != nil {
		return err
	}
	for _, c := range clients {
		row := []string{
			c.ID.String(),
			c.Name,
			deref(c.DocumentNumber),
			deref(c.Email),
			deref(c.Phone),
			c.Status,
			c.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Products writes the product list to w in the requested format.
func Products(w io.Writer, format Format, products []models.Product) error {
	if format == FormatJSON {
		return writeJSON(w, products)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "code", "name", "description", "category", "unit_price", "unit_of_measure", "status", "created_at"}); err != nil {
		return err
	}
	for _, p := range products {
		price := ""
		if p.UnitPrice != nil {
			price = strconv.FormatFloat(*p.UnitPrice, 'f', 2, 64)
		}
		row := []string{
			p.ID.String(),
			p.Code,
			p.Name,
			deref(p.Description),
			deref(p.Category),
			price,
			deref(p.UnitOfMeasure),
			p.Status,
			p.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Suppliers writes the supplier list to w in the requested format.
func Suppliers(w io.Writer, format Format, suppliers []models.Supplier) error {
	if format == FormatJSON {
		return writeJSON(w, suppliers)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "name", "document_number", "email", "phone", "contact_person", "status", "created_at"}); err != nil {
		return err
	}
	for _, s := range suppliers {
		row := []string{
			s.ID.String(),
			s.Name,
			deref(s.DocumentNumber),
			deref(s.Email),
			deref(s.Phone),
			deref(s.ContactPerson),
			s.Status,
			s.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
