package dbtypes

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDArrayBatchProjects(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	batch := UUIDArray{a, b}

	raw, err := batch.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"`+a.String()+`","`+b.String()+`"}`, raw)

	var scanned UUIDArray
	require.NoError(t, scanned.Scan(raw))
	assert.Equal(t, batch, scanned)
	assert.True(t, scanned.Contains(b))
	assert.False(t, scanned.Contains(uuid.New()))
}

func TestUUIDArrayServerLiterals(t *testing.T) {
	id := uuid.New()

	var arr UUIDArray
	require.NoError(t, arr.Scan(nil))
	assert.Empty(t, arr)

	require.NoError(t, arr.Scan([]byte("{}")))
	assert.Empty(t, arr)

	// Postgres sends uuid[] unquoted
	require.NoError(t, arr.Scan([]byte("{"+id.String()+"}")))
	assert.Equal(t, UUIDArray{id}, arr)

	assert.Error(t, arr.Scan("{not-a-uuid}"))
	assert.Error(t, arr.Scan(42))
}

func TestEmptyUUIDArrayValue(t *testing.T) {
	raw, err := UUIDArray{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", raw)
}
