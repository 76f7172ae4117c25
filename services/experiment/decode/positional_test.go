// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package decode

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMappingSet() MappingSet {
	return MappingSet{
		Start: Mapping{"abc": 'S', "xyz": 'T'},
		Body:  Mapping{"abc": 'B', "xyz": 'C'},
		End:   Mapping{"abc": 'E', "xyz": 'F'},
	}
}

// =============================================================================
// PositionClass Tests
// =============================================================================

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		i, n int
		want PositionClass
	}{
		{"first of many", 0, 5, Start},
		{"middle", 2, 5, Body},
		{"last of many", 4, 5, End},
		{"second of two", 1, 2, End},
		{"single token is Start not End", 0, 1, Start},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.i, tt.n))
		})
	}
}

func TestPositionClass_String(t *testing.T) {
	assert.Equal(t, "start", Start.String())
	assert.Equal(t, "body", Body.String())
	assert.Equal(t, "end", End.String())
}

// =============================================================================
// Mapping Tests
// =============================================================================

func TestMapping_SwapIsReversible(t *testing.T) {
	m := Mapping{"a": 'X', "b": 'Y', "c": 'Z'}
	orig := m.Clone()

	m.Swap("a", "b")
	assert.Equal(t, 'Y', m["a"])
	assert.Equal(t, 'X', m["b"])

	m.Swap("a", "b")
	assert.Equal(t, orig, m)
}

func TestMapping_SwapPreservesPermutation(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 0))
	m := NewRandomMapping([]string{"a", "b", "c", "d"}, "WXYZ", rng)
	require.True(t, m.IsPermutation())

	// Many random transpositions never introduce a duplicate target.
	tokens := []string{"a", "b", "c", "d"}
	for i := 0; i < 500; i++ {
		t1 := tokens[rng.IntN(len(tokens))]
		t2 := tokens[rng.IntN(len(tokens))]
		m.Swap(t1, t2)
		require.True(t, m.IsPermutation(), "iteration %d", i)
	}
}

func TestNewRandomMapping_CoversVocabulary(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 0))
	vocabulary := []string{"a", "b", "c", "d", "e", "f", "g"}
	m := NewRandomMapping(vocabulary, "XYZ", rng)

	require.Len(t, m, len(vocabulary))
	for _, tok := range vocabulary {
		letter, ok := m[tok]
		require.True(t, ok)
		assert.Contains(t, "XYZ", string(letter))
	}
	// Vocabulary larger than alphabet: many-to-one by policy.
	assert.False(t, m.IsPermutation())
}

func TestNewRandomMapping_SeededDeterminism(t *testing.T) {
	vocabulary := []string{"a", "b", "c"}
	m1 := NewRandomMapping(vocabulary, Latin23, rand.New(rand.NewPCG(42, 0)))
	m2 := NewRandomMapping(vocabulary, Latin23, rand.New(rand.NewPCG(42, 0)))
	assert.Equal(t, m1, m2)
}

// =============================================================================
// MappingSet Tests
// =============================================================================

func TestMappingSet_CloneIsIndependent(t *testing.T) {
	ms := testMappingSet()
	clone := ms.Clone()
	ms.Start["abc"] = '!'
	assert.Equal(t, 'S', clone.Start["abc"])
}

func TestMappingSet_Validate(t *testing.T) {
	ms := testMappingSet()
	assert.NoError(t, ms.Validate([]string{"abc", "xyz"}))

	err := ms.Validate([]string{"abc", "missing"})
	require.Error(t, err)
	var invalid *InvalidMappingError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, Start, invalid.Class)

	empty := MappingSet{Start: Mapping{}, Body: Mapping{}, End: Mapping{}}
	assert.Error(t, empty.Validate([]string{"abc"}))
}

func TestMappingSet_Tables(t *testing.T) {
	ms := testMappingSet()
	tables := ms.Tables()
	assert.Equal(t, "S", tables["start"]["abc"])
	assert.Equal(t, "B", tables["body"]["abc"])
	assert.Equal(t, "E", tables["end"]["abc"])
}

// =============================================================================
// Decoding Tests
// =============================================================================

func TestDecodeLine_PositionalDispatch(t *testing.T) {
	ms := testMappingSet()
	got := DecodeLine(&ms, []string{"abc", "abc", "abc"})
	assert.Equal(t, "SBE", got)
}

func TestDecodeLine_SingleTokenUsesStartTable(t *testing.T) {
	ms := testMappingSet()
	// The Start table's entry, not the End table's, determines the output.
	assert.Equal(t, "S", DecodeLine(&ms, []string{"abc"}))
}

func TestDecodeLine_TwoTokens(t *testing.T) {
	ms := testMappingSet()
	assert.Equal(t, "SF", DecodeLine(&ms, []string{"abc", "xyz"}))
}

func TestDecodeLine_OutOfVocabularyFallback(t *testing.T) {
	ms := testMappingSet()
	// Unknown tokens become the fallback symbol, never dropped.
	got := DecodeLine(&ms, []string{"abc", "unseen", "abc"})
	assert.Equal(t, "S?E", got)
	assert.Len(t, got, 3)
}

func TestDecodeLine_Empty(t *testing.T) {
	ms := testMappingSet()
	assert.Equal(t, "", DecodeLine(&ms, nil))
}

func TestDecodeLines_Concatenates(t *testing.T) {
	ms := testMappingSet()
	got := DecodeLines(&ms, [][]string{
		{"abc", "xyz"},
		{"xyz"},
		nil,
	})
	assert.Equal(t, "SFT", got)
}
