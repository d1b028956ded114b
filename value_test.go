package genson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValueDistinguishesIntegerAndNumber(t *testing.T) {
	v, err := decodeValue([]byte(`42`))
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = decodeValue([]byte(`42.0`))
	require.NoError(t, err)
	assert.Equal(t, float64(42.0), v)

	v, err = decodeValue([]byte(`4.2e1`))
	require.NoError(t, err)
	assert.Equal(t, float64(42.0), v)
}

func TestDecodeValuePreservesObjectKeyOrder(t *testing.T) {
	v, err := decodeValue([]byte(`{"z": 1, "a": 2, "m": 3}`))
	require.NoError(t, err)
	ov, ok := v.(*OrderedValue)
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a", "m"}, orderedKeys(ov))
}

func TestDecodeValueNestedShapes(t *testing.T) {
	v, err := decodeValue([]byte(`{"list": [1, "x", null, true], "nested": {"k": 1}}`))
	require.NoError(t, err)
	ov := v.(*OrderedValue)

	list, ok := ov.Get("list")
	require.True(t, ok)
	arr, ok := list.([]any)
	require.True(t, ok)
	assert.Equal(t, []any{int64(1), "x", nil, true}, arr)

	nested, ok := ov.Get("nested")
	require.True(t, ok)
	nov, ok := nested.(*OrderedValue)
	require.True(t, ok)
	k, ok := nov.Get("k")
	require.True(t, ok)
	assert.Equal(t, int64(1), k)
}

func TestDecodeValueRejectsTrailingGarbage(t *testing.T) {
	_, err := decodeValue([]byte(`1 2`))
	assert.Error(t, err)
}

func TestDecodeValueRejectsMalformedJSON(t *testing.T) {
	_, err := decodeValue([]byte(`{"a": }`))
	assert.Error(t, err)
}
