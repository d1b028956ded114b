package genson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinWidensIntegerAndNumberToNumber(t *testing.T) {
	got := Join(NewScalar(KindInteger), NewScalar(KindNumber))
	assert.Equal(t, KindNumber, got.Kind)
}

func TestJoinDifferentScalarsFormUnion(t *testing.T) {
	got := canonicalize(Join(NewScalar(KindString), NewScalar(KindBoolean)))
	require.Equal(t, KindUnion, got.Kind)
	assert.Len(t, got.Members, 2)
}

func TestJoinObjectsRelaxesMissingFieldToOptional(t *testing.T) {
	a := NewObject()
	a.SetProperty("id", NewScalar(KindInteger))
	a.MarkRequired("id")
	a.SetProperty("name", NewScalar(KindString))
	a.MarkRequired("name")

	b := NewObject()
	b.SetProperty("id", NewScalar(KindInteger))
	b.MarkRequired("id")

	joined := Join(a, b)
	assert.True(t, joined.IsRequired("id"))
	assert.False(t, joined.IsRequired("name"))
	assert.Equal(t, []string{"id", "name"}, joined.PropertyNames())
}

func TestBuildSchemaAppendsNewKeysInFirstSeenOrder(t *testing.T) {
	cfg := DefaultConfig()
	values := []any{
		mustOrdered(`{"a": 1, "b": 2}`),
		mustOrdered(`{"c": 3, "d": 4}`),
	}
	schema, err := BuildSchema(values, cfg)
	require.NoError(t, err)
	require.Equal(t, KindObject, schema.Kind)
	assert.Equal(t, []string{"a", "b", "c", "d"}, schema.PropertyNames())
}

func TestBuildSchemaIsOrderIndependentOfPartitionCount(t *testing.T) {
	values := []any{
		mustOrdered(`{"a": 1}`),
		mustOrdered(`{"b": 2}`),
		mustOrdered(`{"a": 1, "c": 3}`),
		mustOrdered(`{"d": 4}`),
	}

	one := 1
	four := 4
	cfgSerial := DefaultConfig()
	cfgSerial.MaxBuilders = &one
	cfgParallel := DefaultConfig()
	cfgParallel.MaxBuilders = &four

	serial, err := BuildSchema(values, cfgSerial)
	require.NoError(t, err)
	parallel, err := BuildSchema(values, cfgParallel)
	require.NoError(t, err)

	assert.True(t, serial.Equal(parallel))
	assert.Equal(t, serial.PropertyNames(), parallel.PropertyNames())
}

func TestBuildSchemaEmptyBatchErrors(t *testing.T) {
	_, err := BuildSchema(nil, DefaultConfig())
	var eerr *EmptyBatchError
	require.ErrorAs(t, err, &eerr)
}

// mustOrdered decodes a JSON object literal into an *OrderedValue for use
// as a test fixture.
func mustOrdered(s string) *OrderedValue {
	v, err := decodeValue([]byte(s))
	if err != nil {
		panic(err)
	}
	return v.(*OrderedValue)
}
