package model

import (
	"fmt"
	"strings"
)

// Regime is one of the four macro states used as training target and trading signal.
// Keep these values stable; they are serialized as integers.
type Regime int

const (
	Goldilocks Regime = iota
	Slowdown
	Stagflation
	Overheating
)

// NumRegimes is the size of every class-count and probability vector.
const NumRegimes = 4

// RegimeInfo is display metadata. It carries no behavior.
type RegimeInfo struct {
	ID          Regime `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

var regimeInfo = [NumRegimes]RegimeInfo{
	{Goldilocks, "Goldilocks", "#2e7d32", "Positive returns, low volatility, expanding growth, contained inflation"},
	{Slowdown, "Slowdown", "#1565c0", "Negative returns, contracting growth, elevated volatility"},
	{Stagflation, "Stagflation", "#c62828", "Weak growth with high inflation expectations and rising volatility"},
	{Overheating, "Overheating", "#ef6c00", "Strong returns with compressed volatility across VIX, VVIX and realized vol"},
}

func (r Regime) Valid() bool { return r >= 0 && r < NumRegimes }

func (r Regime) String() string {
	if !r.Valid() {
		return fmt.Sprintf("regime(%d)", int(r))
	}
	return regimeInfo[r].Name
}

func (r Regime) Info() RegimeInfo {
	if !r.Valid() {
		return RegimeInfo{ID: r, Name: r.String()}
	}
	return regimeInfo[r]
}

// Regimes returns the metadata of all regimes ordered by id.
func Regimes() []RegimeInfo {
	out := make([]RegimeInfo, NumRegimes)
	copy(out, regimeInfo[:])
	return out
}

// ParseRegime accepts a regime id ("0".."3") or a case-insensitive name.
func ParseRegime(s string) (Regime, error) {
	for _, info := range regimeInfo {
		if strings.EqualFold(strings.TrimSpace(s), info.Name) || strings.TrimSpace(s) == fmt.Sprint(int(info.ID)) {
			return info.ID, nil
		}
	}
	return 0, fmt.Errorf("unknown regime %q", s)
}

// RegimePoint is the active regime for one date.
type RegimePoint struct {
	Date   string `json:"date"`
	Regime Regime `json:"regime"`
}
