package model

// Action is the buy/sell label shown next to a distance.
type Action string

const (
	ActionBuy  Action = "Buy"
	ActionSell Action = "Sell"
)

// Status is the display mapping of a signed distance.
type Status struct {
	Emoji  string
	Color  string
	Action Action
}
