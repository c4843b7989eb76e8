package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSeatNumbersCanonicalizes(t *testing.T) {
	s, err := encodeSeatNumbers([]uint32{10, 2, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, "[1,2,10]", s)
}

func TestEncodeSeatNumbersRejectsEmpty(t *testing.T) {
	_, err := encodeSeatNumbers(nil)
	assert.Error(t, err)
	_, err = encodeSeatNumbers([]uint32{})
	assert.Error(t, err)
}

func TestDecodeSeatNumbers(t *testing.T) {
	nums, err := decodeSeatNumbers("[1,2,10]")
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 10}, nums)

	_, err = decodeSeatNumbers("not json")
	assert.Error(t, err)
	_, err = decodeSeatNumbers(`["A1"]`)
	assert.Error(t, err)
}

func TestCanonicalSeats(t *testing.T) {
	in := []uint32{5, 1, 5, 3, 1}
	out := canonicalSeats(in)
	assert.Equal(t, []uint32{1, 3, 5}, out)
	assert.Equal(t, []uint32{5, 1, 5, 3, 1}, in, "input untouched")

	assert.Empty(t, canonicalSeats(nil))
}

func TestOverlap(t *testing.T) {
	taken := map[uint32]struct{}{2: {}, 7: {}}
	assert.Equal(t, []uint32{2, 7}, overlap([]uint32{7, 2, 5}, taken))
	assert.Empty(t, overlap([]uint32{1, 3}, taken))
	assert.Empty(t, overlap(nil, taken))
}
