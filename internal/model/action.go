package model

// Side is the book a position belongs to.
// Keep these values stable; they are intended for CSV output.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// SideFromWeight maps a signed portfolio weight onto its book.
func SideFromWeight(w float64) Side {
	if w < 0 {
		return SideShort
	}
	return SideLong
}
