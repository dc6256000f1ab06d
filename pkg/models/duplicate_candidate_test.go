package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOrderPair(t *testing.T) {
	smaller := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	larger := uuid.MustParse("99999999-9999-9999-9999-999999999999")

	a, b := OrderPair(smaller, larger)
	assert.Equal(t, smaller, a)
	assert.Equal(t, larger, b)

	a, b = OrderPair(larger, smaller)
	assert.Equal(t, smaller, a, "order must not depend on argument order")
	assert.Equal(t, larger, b)
}

func TestIsEntityTable(t *testing.T) {
	assert.True(t, IsEntityTable(TableClients))
	assert.True(t, IsEntityTable(TableProducts))
	assert.True(t, IsEntityTable(TableSuppliers))
	assert.False(t, IsEntityTable("invoices"))
	assert.False(t, IsEntityTable(""))
}
