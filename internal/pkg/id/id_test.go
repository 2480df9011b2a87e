package id

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Unique(t *testing.T) {
	assert.NotEqual(t, New(), New())
}

func TestNewAt_EncodesTimestamp(t *testing.T) {
	at := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	parsed, err := ulid.Parse(NewAt(at))
	require.NoError(t, err)
	assert.True(t, at.Equal(ulid.Time(parsed.Time())))
}

func TestNewAt_SortsByTime(t *testing.T) {
	earlier := NewAt(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	later := NewAt(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	assert.Less(t, earlier, later)
}
