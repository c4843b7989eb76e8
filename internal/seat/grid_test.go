package seat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	cases := map[uint32]string{
		1:   "A1",
		5:   "A5",
		10:  "A10",
		11:  "B1",
		20:  "B10",
		25:  "C5",
		26:  "C6",
		251: "Z1",
		260: "Z10",
		261: "AA1",
		270: "AA10",
		271: "AB1",
	}
	for n, want := range cases {
		assert.Equal(t, want, Label(n), "seat %d", n)
	}
}

func TestParseRoundTrip(t *testing.T) {
	for n := uint32(1); n <= 300; n++ {
		got, err := Parse(Label(n))
		require.NoError(t, err, "label %s", Label(n))
		assert.Equal(t, n, got)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, label := range []string{"", "A", "7", "A0", "A11", "a1", "1A", "A-1", "AA 1"} {
		_, err := Parse(label)
		assert.Error(t, err, "label %q", label)
	}
}

func TestRowColumn(t *testing.T) {
	assert.Equal(t, 0, Row(1))
	assert.Equal(t, 0, Row(10))
	assert.Equal(t, 1, Row(11))
	assert.Equal(t, 1, Column(1))
	assert.Equal(t, 10, Column(10))
	assert.Equal(t, 1, Column(11))
	assert.Equal(t, 5, Column(25))
}

func TestRows(t *testing.T) {
	cases := []struct {
		total uint32
		rows  int
	}{
		{0, 0}, {1, 1}, {9, 1}, {10, 1}, {11, 2}, {48, 5}, {100, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.rows, Rows(tc.total), "total %d", tc.total)
	}
}

func TestRowLabel(t *testing.T) {
	assert.Equal(t, "A", RowLabel(0))
	assert.Equal(t, "Z", RowLabel(25))
	assert.Equal(t, "AA", RowLabel(26))
	assert.Equal(t, "AZ", RowLabel(51))
	assert.Equal(t, "BA", RowLabel(52))
	assert.Equal(t, "", RowLabel(-1))
}

func TestLabelsSortsInput(t *testing.T) {
	in := []uint32{11, 1, 10}
	assert.Equal(t, []string{"A1", "A10", "B1"}, Labels(in))
	assert.Equal(t, []uint32{11, 1, 10}, in, "input must not be reordered")
}

func ExampleLabel() {
	fmt.Println(Label(1), Label(10), Label(11))
	// Output: A1 A10 B1
}
