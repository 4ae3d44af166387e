package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInvoiceDate(t *testing.T) {
	want := time.Date(2025, 2, 25, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2025-02-25", "25.02.2025", "25/02/2025"} {
		got := parseInvoiceDate(in)
		require.NotNil(t, got, "input %q", in)
		assert.True(t, got.Equal(want), "input %q", in)
	}

	withTime := parseInvoiceDate("2025-02-25 10:30:00")
	require.NotNil(t, withTime)
	assert.Equal(t, 10, withTime.Hour())

	for _, in := range []string{"", "-", "NULL", "февраль 2025"} {
		assert.Nil(t, parseInvoiceDate(in), "input %q", in)
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	assert.Equal(t, "КОНТЕ", truncate("КОНТЕЙНЕР", 5))
	assert.Equal(t, "short", truncate("short", 20))
}
