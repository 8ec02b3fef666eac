package game

import "time"

// ContractDeliverTerm is one delivery line of a contract.
type ContractDeliverTerm struct {
	TradeSymbol       string
	DestinationSymbol string
	UnitsRequired     int
	UnitsFulfilled    int
}

// Remaining is the units still owed on this delivery line.
func (t ContractDeliverTerm) Remaining() int {
	return t.UnitsRequired - t.UnitsFulfilled
}

// Contract mirrors a remote contract: terms, deadline and flags.
type Contract struct {
	ID               string
	FactionSymbol    string
	Type             string
	Deliveries       []ContractDeliverTerm
	Deadline         time.Time
	PaymentOnAccept  int
	PaymentOnFulfill int
	Accepted         bool
	Fulfilled        bool
}
