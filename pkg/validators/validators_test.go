package validators

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCPF(t *testing.T) {
	assert.True(t, IsCPF("529.982.247-25"))
	assert.True(t, IsCPF("52998224725"))
	assert.True(t, IsCPF("123.456.789-09"))

	assert.False(t, IsCPF("529.982.247-26"), "wrong check digit")
	assert.False(t, IsCPF("111.111.111-11"), "repeated digits")
	assert.False(t, IsCPF("1234567890"), "too short")
	assert.False(t, IsCPF(""))
}

func TestIsCNPJ(t *testing.T) {
	assert.True(t, IsCNPJ("11.222.333/0001-81"))
	assert.True(t, IsCNPJ("11222333000181"))

	assert.False(t, IsCNPJ("11.222.333/0001-82"), "wrong check digit")
	assert.False(t, IsCNPJ("00.000.000/0000-00"), "repeated digits")
	assert.False(t, IsCNPJ("11.222.333/0001"), "too short")
}

func TestIsDocument(t *testing.T) {
	assert.True(t, IsDocument("529.982.247-25"))
	assert.True(t, IsDocument("11.222.333/0001-81"))
	assert.False(t, IsDocument("not-a-document"))
}

func TestIsPhone(t *testing.T) {
	assert.True(t, IsPhone("(11) 98765-4321"))
	assert.True(t, IsPhone("1187654321"))
	assert.False(t, IsPhone("12345"))
	assert.False(t, IsPhone("123456789012"))
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("joao@example.com"))
	assert.False(t, IsEmail("joao@"))
	assert.False(t, IsEmail("example.com"))
}

func TestRegisterCustomRules(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	type payload struct {
		Document string `validate:"cpf"`
		Phone    string `validate:"brphone"`
	}

	assert.NoError(t, v.Struct(payload{Document: "529.982.247-25", Phone: "(11) 98765-4321"}))
	assert.Error(t, v.Struct(payload{Document: "111.111.111-11", Phone: "(11) 98765-4321"}))
}
