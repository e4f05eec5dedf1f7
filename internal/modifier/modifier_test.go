package modifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/skillkeeper/internal/registry"
)

func TestOperationFromCode(t *testing.T) {
	for _, want := range []Operation{OperationAdd, OperationAddPercent, OperationMultiply} {
		got, ok := OperationFromCode(want.Code())
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	got, ok := OperationFromCode(99)
	assert.False(t, ok)
	assert.Equal(t, OperationAdd, got)
}

func TestModifier_Permanent(t *testing.T) {
	m := NewStatModifier("helmet", registry.Stat{ID: registry.NewID("core", "health")}, 5)

	assert.False(t, m.Temporary())
	assert.False(t, m.Expired(time.Now()))
	assert.Equal(t, time.Duration(0), m.RemainingAt(time.Now()))
}

func TestModifier_Temporary(t *testing.T) {
	now := time.Now()
	m := NewStatModifier("potion", registry.Stat{ID: registry.NewID("core", "strength")}, 3)
	m.MakeTemporary(now.Add(30*time.Second), true)

	assert.True(t, m.Temporary())
	assert.True(t, m.PauseOffline)
	assert.False(t, m.Expired(now))
	assert.True(t, m.Expired(now.Add(30*time.Second)))
	assert.Equal(t, 30*time.Second, m.RemainingAt(now))
	assert.Equal(t, time.Duration(0), m.RemainingAt(now.Add(time.Minute)))
}

func TestNewTraitModifier(t *testing.T) {
	trait := registry.Trait{ID: registry.NewID("core", "hp")}
	m := NewTraitModifier("ring", trait, 2.5)

	assert.Equal(t, TypeTrait, m.Type)
	assert.Equal(t, trait.ID, m.Target)
	assert.Equal(t, OperationAdd, m.Operation)
}
