package genson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeFlattensNestedUnions(t *testing.T) {
	inner := NewUnion(NewScalar(KindString), NewScalar(KindBoolean))
	outer := NewUnion(NewScalar(KindInteger), inner)

	got := canonicalize(outer)
	require.Equal(t, KindUnion, got.Kind)
	require.Len(t, got.Members, 3)
	assert.Equal(t, KindBoolean, got.Members[0].Kind)
	assert.Equal(t, KindInteger, got.Members[1].Kind)
	assert.Equal(t, KindString, got.Members[2].Kind)
}

func TestCanonicalizeDeduplicatesUnionMembers(t *testing.T) {
	u := NewUnion(NewScalar(KindString), NewScalar(KindString), NewScalar(KindBoolean))
	got := canonicalize(u)
	require.Equal(t, KindUnion, got.Kind)
	assert.Len(t, got.Members, 2)
}

func TestCanonicalizeSingleMemberUnionCollapses(t *testing.T) {
	u := NewUnion(NewScalar(KindString))
	got := canonicalize(u)
	assert.Equal(t, KindString, got.Kind)
}

func TestCanonicalNullableForm(t *testing.T) {
	u := NewUnion(NewScalar(KindNull), NewScalar(KindString))
	got := canonicalize(u)
	require.Equal(t, KindUnion, got.Kind)
	require.Len(t, got.Members, 2)
	assert.Equal(t, KindNull, got.Members[0].Kind)
	assert.Equal(t, KindString, got.Members[1].Kind)
	assert.True(t, got.IsNullable())
}

func TestCanonicalizeUnionMergesSameKindObjectMembers(t *testing.T) {
	objA := NewObject()
	objA.SetProperty("a", NewScalar(KindInteger))
	objA.MarkRequired("a")

	objB := NewObject()
	objB.SetProperty("b", NewScalar(KindInteger))
	objB.MarkRequired("b")

	u := NewUnion(NewScalar(KindNull), objA, objB)
	got := canonicalize(u)

	require.Equal(t, KindUnion, got.Kind)
	require.Len(t, got.Members, 2, "null and exactly one merged object, never two separate objects")
	assert.Equal(t, KindNull, got.Members[0].Kind)
	require.Equal(t, KindObject, got.Members[1].Kind)
	assert.ElementsMatch(t, []string{"a", "b"}, got.Members[1].PropertyNames())
	assert.False(t, got.Members[1].IsRequired("a"))
	assert.False(t, got.Members[1].IsRequired("b"))
}

func TestCanonicalizeUnionMergesAcrossThreeJoins(t *testing.T) {
	// Simulates {"x":null}, {"x":{"a":1}}, {"x":{"b":2}} accumulating
	// through Join one document at a time: the null/object union formed by
	// the first two documents must still merge with the third document's
	// differently-shaped object, rather than keeping two Object members.
	var acc *NodeSchema
	acc = Join(acc, NewScalar(KindNull))
	objA := NewObject()
	objA.SetProperty("a", NewScalar(KindInteger))
	objA.MarkRequired("a")
	acc = Join(acc, objA)

	objB := NewObject()
	objB.SetProperty("b", NewScalar(KindInteger))
	objB.MarkRequired("b")
	acc = Join(acc, objB)

	got := canonicalize(acc)
	require.Equal(t, KindUnion, got.Kind)
	require.Len(t, got.Members, 2)
	require.Equal(t, KindObject, got.Members[1].Kind)
	assert.ElementsMatch(t, []string{"a", "b"}, got.Members[1].PropertyNames())
}

func TestEqualIgnoresPropertyOrder(t *testing.T) {
	a := NewObject()
	a.SetProperty("x", NewScalar(KindString))
	a.SetProperty("y", NewScalar(KindInteger))

	b := NewObject()
	b.SetProperty("y", NewScalar(KindInteger))
	b.SetProperty("x", NewScalar(KindString))

	assert.True(t, a.Equal(b))
}

func TestPropertyOrderPreservesInsertion(t *testing.T) {
	obj := NewObject()
	obj.SetProperty("z", NewScalar(KindString))
	obj.SetProperty("a", NewScalar(KindString))
	obj.SetProperty("m", NewScalar(KindString))
	assert.Equal(t, []string{"z", "a", "m"}, obj.PropertyNames())
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	obj := NewObject()
	obj.SetProperty("name", NewScalar(KindString))
	obj.SetProperty("age", NewScalar(KindInteger))
	obj.MarkRequired("name")

	data, err := obj.MarshalJSON()
	require.NoError(t, err)

	var got NodeSchema
	require.NoError(t, got.UnmarshalJSON(data))
	assert.Equal(t, KindObject, got.Kind)
	assert.True(t, got.IsRequired("name"))
	assert.False(t, got.IsRequired("age"))
}
