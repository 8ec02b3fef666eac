package game

// TradeGood is one priced resource at a marketplace.
type TradeGood struct {
	Symbol        string
	Supply        string
	TradeVolume   int
	PurchasePrice int
	SellPrice     int
}

// Market is the price sheet of one marketplace waypoint.
type Market struct {
	WaypointSymbol string
	Imports        []string
	Exports        []string
	Exchange       []string
	TradeGoods     []TradeGood
}
