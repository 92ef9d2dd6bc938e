package deck

import "fmt"

// card values as reported by the card service
const (
	Jack  = "JACK"
	Queen = "QUEEN"
	King  = "KING"
	Ace   = "ACE"
)

// HiddenCode is the code of the face-down card placeholder sent to clients
// before the dealer reveals their hand.
const HiddenCode = "HIDDEN"

// Card is an individual playing card as dealt by the card service.
// Value and Suit are the service's upper-case names ("ACE", "9", "SPADES").
// A card never changes rank once drawn.
type Card struct {
	Value string `json:"value"`
	Suit  string `json:"suit"`
	Code  string `json:"code,omitempty"`
	Image string `json:"image,omitempty"`
}

// Hidden returns the face-down placeholder card. It has no value, so hand
// valuation skips it.
func Hidden() Card {
	return Card{Code: HiddenCode}
}

// IsHidden returns true if the card is the face-down placeholder
func (c Card) IsHidden() bool {
	return c.Code == HiddenCode
}

// Equal returns true if the cards are equal (matches suit and value)
func (c Card) Equal(card Card) bool {
	return c.Suit == card.Suit && c.Value == card.Value
}

func (c Card) String() string {
	if c.IsHidden() {
		return "one hidden card"
	}

	return fmt.Sprintf("%s of %s", c.Value, c.Suit)
}
