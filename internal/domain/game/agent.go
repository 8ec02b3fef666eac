package game

// Agent is the player account: credits move on refuel, buy, sell and
// ship purchase.
type Agent struct {
	AccountID       string
	Symbol          string
	Headquarters    string
	Credits         int
	StartingFaction string
}
