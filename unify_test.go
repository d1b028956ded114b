package genson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifyMergesObjectVariants(t *testing.T) {
	a := NewObject()
	a.SetProperty("x", NewScalar(KindInteger))
	a.MarkRequired("x")

	b := NewObject()
	b.SetProperty("y", NewScalar(KindString))
	b.MarkRequired("y")

	cfg := DefaultConfig()
	merged, ok := Unify([]*NodeSchema{a, b}, cfg, "field")
	require.True(t, ok)
	assert.Equal(t, KindObject, merged.Kind)
	assert.ElementsMatch(t, []string{"x", "y"}, merged.PropertyNames())
	assert.False(t, merged.IsRequired("x"))
	assert.False(t, merged.IsRequired("y"))
}

func TestUnifyPromotesScalarAgainstRecord(t *testing.T) {
	obj := NewObject()
	obj.SetProperty("hex", NewScalar(KindString))

	scalar := NewScalar(KindInteger)

	cfg := DefaultConfig()
	cfg.WrapScalars = true
	merged, ok := Unify([]*NodeSchema{obj, scalar}, cfg, "rgb")
	require.True(t, ok)
	require.Equal(t, KindObject, merged.Kind)
	assert.ElementsMatch(t, []string{"hex", "rgb__integer"}, merged.PropertyNames())
}

func TestUnifyFailsOnCollisionWithPromotedName(t *testing.T) {
	obj := NewObject()
	obj.SetProperty("rgb__integer", NewScalar(KindString))

	scalar := NewScalar(KindInteger)

	cfg := DefaultConfig()
	cfg.WrapScalars = true
	_, ok := Unify([]*NodeSchema{obj, scalar}, cfg, "rgb")
	assert.False(t, ok)
}

func TestUnifyFailsWhenScalarPromotionDisabled(t *testing.T) {
	obj := NewObject()
	obj.SetProperty("hex", NewScalar(KindString))
	scalar := NewScalar(KindInteger)

	cfg := DefaultConfig()
	cfg.WrapScalars = false
	_, ok := Unify([]*NodeSchema{obj, scalar}, cfg, "rgb")
	assert.False(t, ok)
}

func TestUnifyNonObjectVariantsJoinDirectly(t *testing.T) {
	cfg := DefaultConfig()
	merged, ok := Unify([]*NodeSchema{NewScalar(KindInteger), NewScalar(KindNumber)}, cfg, "n")
	require.True(t, ok)
	assert.Equal(t, KindNumber, merged.Kind)
}
