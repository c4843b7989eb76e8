// Package seat derives seat positions and labels from a show's seat
// count. Seats are not a stored entity: seat n of a show occupies row
// (n-1)/10 and column ((n-1) mod 10)+1 on a fixed 10-column grid, with
// rows lettered from 'A'. The same formulas back both the seat-map
// endpoint and human-readable booking summaries, so labels and numbers
// round-trip exactly.
package seat

import (
	"fmt"
	"sort"
	"strconv"
)

// Columns is the fixed width of the seat grid.
const Columns = 10

// Row returns the zero-based row index of a seat number.
func Row(n uint32) int { return int(n-1) / Columns }

// Column returns the 1-based column of a seat number.
func Column(n uint32) int { return int(n-1)%Columns + 1 }

// Rows returns how many grid rows a show with the given seat count
// occupies. The last row may be partial.
func Rows(totalSeats uint32) int {
	return (int(totalSeats) + Columns - 1) / Columns
}

// RowLabel converts a zero-based row index to its letter label:
// 0 -> "A", 25 -> "Z", 26 -> "AA" and so on. Negative indices yield
// an empty string.
func RowLabel(i int) string {
	if i < 0 {
		return ""
	}
	var b []byte
	for {
		b = append([]byte{byte('A' + i%26)}, b...)
		i = i/26 - 1
		if i < 0 {
			return string(b)
		}
	}
}

// Label formats a seat number as row letters plus 1-based column,
// e.g. 1 -> "A1", 10 -> "A10", 11 -> "B1".
func Label(n uint32) string {
	return RowLabel(Row(n)) + strconv.Itoa(Column(n))
}

// Parse is the exact inverse of Label. It accepts one or more upper
// case row letters followed by a column in [1, Columns].
func Parse(label string) (uint32, error) {
	i := 0
	for i < len(label) && label[i] >= 'A' && label[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(label) {
		return 0, fmt.Errorf("seat: malformed label %q", label)
	}
	row := 0
	for _, c := range label[:i] {
		row = row*26 + int(c-'A') + 1
	}
	row--
	col, err := strconv.Atoi(label[i:])
	if err != nil || col < 1 || col > Columns {
		return 0, fmt.Errorf("seat: bad column in label %q", label)
	}
	return uint32(row*Columns + col), nil
}

// Labels maps seat numbers to labels in ascending seat order. The
// input slice is not modified.
func Labels(nums []uint32) []string {
	sorted := append([]uint32(nil), nums...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := make([]string, len(sorted))
	for i, n := range sorted {
		out[i] = Label(n)
	}
	return out
}
