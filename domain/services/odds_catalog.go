package services

// catalogEntry is one appealing fractional price. odds is the decimal
// equivalent x100 (100 + round(100*num/den)).
type catalogEntry struct {
	num  int64
	den  int64
	odds int64
}

// oddsCatalog is the fixed set of conventional betting fractions quotes
// snap to, sorted ascending by decimal value. It spans exactly the
// quotable range: 1/20 (1.05x) through 19/1 (20.00x).
var oddsCatalog = []catalogEntry{
	{1, 20, 105},
	{1, 10, 110},
	{1, 8, 113},
	{1, 6, 117},
	{1, 5, 120},
	{1, 4, 125},
	{2, 7, 129},
	{1, 3, 133},
	{2, 5, 140},
	{4, 9, 144},
	{1, 2, 150},
	{8, 15, 153},
	{4, 7, 157},
	{3, 5, 160},
	{4, 6, 167},
	{8, 11, 173},
	{4, 5, 180},
	{5, 6, 183},
	{10, 11, 191},
	{1, 1, 200},
	{11, 10, 210},
	{5, 4, 225},
	{11, 8, 238},
	{6, 4, 250},
	{13, 8, 263},
	{7, 4, 275},
	{15, 8, 288},
	{2, 1, 300},
	{9, 4, 325},
	{5, 2, 350},
	{11, 4, 375},
	{3, 1, 400},
	{10, 3, 433},
	{7, 2, 450},
	{4, 1, 500},
	{9, 2, 550},
	{5, 1, 600},
	{11, 2, 650},
	{6, 1, 700},
	{13, 2, 750},
	{7, 1, 800},
	{15, 2, 850},
	{8, 1, 900},
	{17, 2, 950},
	{9, 1, 1000},
	{10, 1, 1100},
	{11, 1, 1200},
	{12, 1, 1300},
	{14, 1, 1500},
	{16, 1, 1700},
	{18, 1, 1900},
	{19, 1, 2000},
}

// snapToCatalog returns the catalog price nearest to odds. Exact matches
// win; otherwise the two bracketing entries are compared and ties break
// toward the smaller odds.
func snapToCatalog(odds int64) int64 {
	lo, hi := 0, len(oddsCatalog)-1
	if odds <= oddsCatalog[lo].odds {
		return oddsCatalog[lo].odds
	}
	if odds >= oddsCatalog[hi].odds {
		return oddsCatalog[hi].odds
	}
	for lo+1 < hi {
		mid := (lo + hi) / 2
		switch {
		case oddsCatalog[mid].odds == odds:
			return odds
		case oddsCatalog[mid].odds < odds:
			lo = mid
		default:
			hi = mid
		}
	}
	below, above := oddsCatalog[lo].odds, oddsCatalog[hi].odds
	if odds-below <= above-odds {
		return below
	}
	return above
}
