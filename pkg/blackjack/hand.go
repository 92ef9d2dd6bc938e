package blackjack

import (
	"strconv"
	"strings"

	"blackjackdealer-server/pkg/deck"
)

// BustThreshold is the total above which a hand busts
const BustThreshold = 21

// Hand represents an ordered collection of cards belonging to one party
type Hand []deck.Card

// AddCard adds a card to the hand
func (h *Hand) AddCard(card deck.Card) {
	*h = append(*h, card)
}

// Value returns the best blackjack total for the hand. Face cards count 10,
// aces count 11 and are demoted to 1 one at a time while the total is over
// 21. Cards without a usable value (the hidden placeholder) are skipped, not
// counted as zero.
func (h Hand) Value() int {
	value := 0
	aces := 0

	for _, card := range h {
		switch card.Value {
		case "":
			continue
		case deck.Ace:
			value += 11
			aces++
		case deck.King, deck.Queen, deck.Jack:
			value += 10
		default:
			n, err := strconv.Atoi(card.Value)
			if err != nil {
				continue
			}

			value += n
		}
	}

	for value > BustThreshold && aces > 0 {
		value -= 10
		aces--
	}

	return value
}

// IsBust returns true if the hand's value exceeds 21
func (h Hand) IsBust() bool {
	return h.Value() > BustThreshold
}

// LastCard returns the last card in the hand or nil if the hand is empty
func (h Hand) LastCard() *deck.Card {
	n := len(h)
	if n == 0 {
		return nil
	}

	card := h[n-1]
	return &card
}

// Clone returns a clone of the hand
func (h Hand) Clone() Hand {
	h2 := make(Hand, len(h))
	copy(h2, h)

	return h2
}

// String formats the hand the way the dealer speaks it ("ACE of SPADES and 9 of HEARTS")
func (h Hand) String() string {
	cards := make([]string, len(h))
	for i, card := range h {
		cards[i] = card.String()
	}

	return strings.Join(cards, " and ")
}
