package model

// SectorTickers are the eleven sector ETFs the rotation trades against.
var SectorTickers = []string{"XLB", "XLC", "XLE", "XLF", "XLI", "XLK", "XLP", "XLRE", "XLU", "XLV", "XLY"}

// IsSectorTicker reports whether t is one of SectorTickers.
func IsSectorTicker(t string) bool {
	for _, s := range SectorTickers {
		if s == t {
			return true
		}
	}
	return false
}

// SectorReturnRow holds the weekly return of each sector ETF on one date.
type SectorReturnRow struct {
	Date    string             `json:"date"`
	Returns map[string]float64 `json:"returns"`
}

// StockReturnRow is one stock's weekly return. Many rows share a date.
// A NaN Return is missing; it encodes as JSON null.
type StockReturnRow struct {
	Date   string  `json:"date"`
	Ticker string  `json:"ticker"`
	Sector string  `json:"sector"`
	Return float64 `json:"return"`
}

// SectorBook is the configured long and short sector lists for a regime.
type SectorBook struct {
	Long  []string `json:"long" yaml:"long"`
	Short []string `json:"short" yaml:"short"`
}

// RegimeSectorTable is an immutable regime -> SectorBook lookup.
type RegimeSectorTable struct {
	books map[Regime]SectorBook
}

// NewRegimeSectorTable copies books so later changes to the input do not leak in.
func NewRegimeSectorTable(books map[Regime]SectorBook) RegimeSectorTable {
	t := RegimeSectorTable{books: make(map[Regime]SectorBook, len(books))}
	for r, b := range books {
		t.books[r] = SectorBook{
			Long:  append([]string(nil), b.Long...),
			Short: append([]string(nil), b.Short...),
		}
	}
	return t
}

// Lookup returns the book configured for r.
func (t RegimeSectorTable) Lookup(r Regime) (SectorBook, bool) {
	b, ok := t.books[r]
	return b, ok
}

// Len is the number of configured regimes.
func (t RegimeSectorTable) Len() int { return len(t.books) }
