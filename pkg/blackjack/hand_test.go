package blackjack

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"blackjackdealer-server/pkg/deck"
)

func handFromValues(values ...string) Hand {
	h := make(Hand, len(values))
	for i, v := range values {
		h[i] = deck.Card{Value: v, Suit: "SPADES"}
	}

	return h
}

func TestHand_Value(t *testing.T) {
	a := assert.New(t)

	a.Equal(0, Hand{}.Value())
	a.Equal(12, handFromValues("ACE", "ACE").Value())
	a.Equal(20, handFromValues("ACE", "9").Value())
	a.Equal(21, handFromValues("KING", "QUEEN", "ACE").Value())
	a.Equal(24, handFromValues("10", "9", "5").Value())
	a.Equal(20, handFromValues("JACK", "QUEEN").Value())
	a.Equal(21, handFromValues("ACE", "KING").Value())
	a.Equal(13, handFromValues("ACE", "ACE", "ACE").Value())
	a.Equal(14, handFromValues("ACE", "ACE", "2", "10").Value())
}

func TestHand_Value_isIdempotent(t *testing.T) {
	a := assert.New(t)

	h := handFromValues("ACE", "9")
	a.Equal(20, h.Value())
	a.Equal(20, h.Value())

	h.AddCard(deck.Card{Value: "5", Suit: "CLUBS"})
	a.Equal(15, h.Value())
	a.Equal(15, h.Value())
}

func TestHand_Value_skipsHiddenCards(t *testing.T) {
	a := assert.New(t)

	h := Hand{
		{Value: "KING", Suit: "HEARTS"},
		deck.Hidden(),
	}
	a.Equal(10, h.Value())

	// unparsable values are skipped too
	h.AddCard(deck.Card{Value: "JOKER", Suit: "NONE"})
	a.Equal(10, h.Value())
}

func TestHand_IsBust(t *testing.T) {
	a := assert.New(t)
	a.False(handFromValues("10", "ACE").IsBust())
	a.False(handFromValues("7", "7", "7").IsBust())
	a.True(handFromValues("10", "9", "5").IsBust())
}

func TestHand_LastCard(t *testing.T) {
	a := assert.New(t)
	a.Nil(Hand{}.LastCard())

	h := handFromValues("2", "3")
	a.Equal("3", h.LastCard().Value)
}

func TestHand_Clone(t *testing.T) {
	a := assert.New(t)

	h := handFromValues("2", "3")
	h2 := h.Clone()
	h2.AddCard(deck.Card{Value: "4", Suit: "CLUBS"})

	a.Equal(2, len(h))
	a.Equal(3, len(h2))
}

func TestHand_String(t *testing.T) {
	a := assert.New(t)

	h := Hand{
		{Value: "ACE", Suit: "SPADES"},
		{Value: "9", Suit: "HEARTS"},
	}
	a.Equal("ACE of SPADES and 9 of HEARTS", h.String())

	h = Hand{{Value: "KING", Suit: "CLUBS"}, deck.Hidden()}
	a.Equal("KING of CLUBS and one hidden card", h.String())
}
