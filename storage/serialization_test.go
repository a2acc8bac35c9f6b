package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civica/policyrag/core"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("garbage sorting rules")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalChunk(t *testing.T) {
	indexed := time.Now().UTC().Truncate(time.Microsecond)

	chunk := &core.Chunk{
		ID:        core.IDFromContent("garbage.md:0"),
		Text:      "Garbage must be sorted into recyclable and kitchen waste.",
		Source:    "garbage.md",
		Position:  3,
		Vector:    []float32{0.25, -0.5, 0.125, 1.0},
		IndexedAt: indexed,
	}

	data := MarshalChunk(chunk)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalChunk(data)
	require.NoError(t, err)
	assert.Equal(t, chunk.ID, decoded.ID)
	assert.Equal(t, chunk.Text, decoded.Text)
	assert.Equal(t, chunk.Source, decoded.Source)
	assert.Equal(t, chunk.Position, decoded.Position)
	assert.Equal(t, chunk.Vector, decoded.Vector)
	assert.True(t, chunk.IndexedAt.Equal(decoded.IndexedAt))
}

func TestMarshalUnmarshalChunk_NoVector(t *testing.T) {
	chunk := &core.Chunk{
		ID:     7,
		Text:   "Unembedded passage.",
		Source: "pending.md",
	}

	decoded, err := UnmarshalChunk(MarshalChunk(chunk))
	require.NoError(t, err)
	assert.Nil(t, decoded.Vector)
	assert.True(t, decoded.IndexedAt.IsZero())
}

func TestUnmarshalChunk_Truncated(t *testing.T) {
	chunk := &core.Chunk{ID: 1, Text: "text", Source: "a.md"}
	data := MarshalChunk(chunk)

	_, err := UnmarshalChunk(data[:len(data)/2])
	assert.Error(t, err)
}

func TestMarshalUnmarshalRegistryEntry(t *testing.T) {
	entry := core.RegistryEntry{
		Source:      "garbage.md",
		FilePath:    "/docs/garbage.md",
		Mtime:       1756300000,
		ContentHash: core.ContentHash("document body"),
	}

	data := MarshalRegistryEntry(entry)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalRegistryEntry(data)
	require.NoError(t, err)
	assert.Equal(t, entry, decoded)
}

func TestMarshalUnmarshalBoostRuleSet(t *testing.T) {
	rules := core.NewBoostRuleSet()
	rules.Source["garbage.md"] = 0.2
	rules.Source["parking.md"] = 0.05
	rules.Category["activity"] = 0.1

	data := MarshalBoostRuleSet(rules)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalBoostRuleSet(data)
	require.NoError(t, err)
	assert.Equal(t, rules.Source, decoded.Source)
	assert.Equal(t, rules.Category, decoded.Category)
}

func TestMarshalUnmarshalBoostRuleSet_Empty(t *testing.T) {
	decoded, err := UnmarshalBoostRuleSet(MarshalBoostRuleSet(core.NewBoostRuleSet()))
	require.NoError(t, err)
	assert.Empty(t, decoded.Source)
	assert.Empty(t, decoded.Category)
}
