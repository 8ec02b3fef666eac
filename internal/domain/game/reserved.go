package game

// ReservedItems are cargo symbols that strategies never sell, buy or
// jettison. Antimatter powers jump drives and is painful to re-acquire.
var ReservedItems = map[string]bool{
	"ANTIMATTER": true,
}

// IsReserved reports whether the symbol is protected from automated trade.
func IsReserved(symbol string) bool {
	return ReservedItems[symbol]
}
