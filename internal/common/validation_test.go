package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorCollectsErrors(t *testing.T) {
	v := NewValidator().
		Field("supplier", "", Required).
		Field("file", "invoice.xlsx", Required).
		Field("currency", "dollars", CurrencyCode)

	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 2)

	err := v.Error()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supplier")
	assert.Contains(t, err.Error(), "currency")
}

func TestValidatorNoErrors(t *testing.T) {
	v := NewValidator().Field("currency", "USD", CurrencyCode)
	assert.False(t, v.HasErrors())
	assert.NoError(t, v.Error())
}

func TestRequired(t *testing.T) {
	assert.NotNil(t, Required("f", nil))
	assert.NotNil(t, Required("f", "   "))
	assert.Nil(t, Required("f", "value"))

	empty := ""
	assert.NotNil(t, Required("f", &empty))
	filled := "x"
	assert.Nil(t, Required("f", &filled))
}

func TestMaxLength(t *testing.T) {
	assert.Nil(t, MaxLength("f", "КОНТЕЙНЕР", 9))
	assert.NotNil(t, MaxLength("f", "КОНТЕЙНЕР", 8))
	assert.Nil(t, MaxLength("f", 42, 1))
}

func TestCurrencyCode(t *testing.T) {
	assert.Nil(t, CurrencyCode("f", "CNY"))
	for _, bad := range []any{"usd", "US", "USDT", 7} {
		assert.NotNil(t, CurrencyCode("f", bad), "value %v", bad)
	}
}
