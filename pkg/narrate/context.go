// Package narrate builds the grounded dealer prompt and streams the
// generated narration back to the player.
package narrate

import (
	"fmt"
	"strings"

	"blackjackdealer-server/pkg/blackjack"
	"blackjackdealer-server/pkg/deck"
)

// Action is the game event being narrated
type Action string

// Action constants
const (
	ActionStart Action = "start"
	ActionHit   Action = "hit"
	ActionStand Action = "stand"
)

// IsValid returns true for a recognized action, including the empty action
// used for table talk with no cards on the felt
func (a Action) IsValid() bool {
	switch a {
	case ActionStart, ActionHit, ActionStand, "":
		return true
	}

	return false
}

// ContextInput is everything the builder needs to assemble the prompt for a
// single narration call
type ContextInput struct {
	Action        Action
	PlayerHand    blackjack.Hand
	DealerHand    blackjack.Hand
	HasStood      bool
	LastDrawnCard *deck.Card
	Wager         int
	Rules         string

	// Settlement is the deterministic outcome, required for ActionStand so
	// the narration cannot contradict the arithmetic
	Settlement *blackjack.Settlement
}

// BuildContext assembles the grounding text for the language model. The
// retrieved rules are quoted verbatim, followed by the table constraints and
// a per-action instruction block. While the player hasn't stood, the
// dealer's hidden card never appears in the output.
func BuildContext(in ContextInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a blackjack dealer. The rules are:\n%s\n\n", in.Rules)
	b.WriteString("Under no circumstances may a card be reshuffled. Once a card is shown it always keeps that value. " +
		"You may never let the player know what the value of the hidden card is, unless it is revealed.\n\n")
	b.WriteString("Respond with Markdown formatting, with icons for the suits and a list of the cards per hand. " +
		"The lists can't have too much space between each item and the text above.\n\n")
	b.WriteString("You answer short. You never start your own game!\n" +
		"If a player asks what to do when no cards are drawn, you state that by starting a game you have to place a bet, e.g. 10.\n" +
		"If a player asks what to do when cards are drawn, you state the total value of the cards and explain that you can press " +
		"the hit button to draw a card to try to get closer to 21, or the stand button if you think the next card will get you over 21.\n\n")

	if len(in.PlayerHand) == 0 {
		return b.String()
	}

	playerValue := in.PlayerHand.Value()

	switch in.Action {
	case ActionStart:
		fmt.Fprintf(&b, "The game has started. The player has bet: %d.\n", in.Wager)
		fmt.Fprintf(&b, "Player has %s (total: %d). Dealer shows %s.\n", in.PlayerHand, playerValue, visibleDealer(in))
		b.WriteString("You name the cards with their suit.\n\n")

	case ActionHit:
		fmt.Fprintf(&b, "Player drew %s. Total hand: %s (value: %d).\n", lastCardText(in), in.PlayerHand, playerValue)
		b.WriteString("Name the last drawn card and the new total value of the hand, and only that card; " +
			"you do not state the full hand anymore.\n" +
			"If the total of the hand is more than 21 you tell the player that he has bust.\n" +
			"If the player has 21 you exaggerate the hand total since blackjack is the best hand in the game.\n\n")

	case ActionStand:
		dealerValue := in.DealerHand.Value()
		fmt.Fprintf(&b, "Player stands. Dealer reveals hand: %s (value: %d).\n", in.DealerHand, dealerValue)
		fmt.Fprintf(&b, "Compare hands:\n - Player: %d\n - Dealer: %d\n", playerValue, dealerValue)
		b.WriteString("Announce who wins based on blackjack rules.\n")

		if in.Settlement != nil {
			fmt.Fprintf(&b, "The outcome has already been decided by the house: the bet amount was %d and the payout is %d.\n", in.Wager, in.Settlement.Payout)
			switch {
			case in.Settlement.Payout == 0:
				fmt.Fprintf(&b, "Announce that the player loses their bet of %d. Do not state any other amount.\n", in.Wager)
			case in.Settlement.Payout == in.Wager:
				fmt.Fprintf(&b, "Announce a push: the player gets their bet of %d back, no more and no less.\n", in.Wager)
			default:
				fmt.Fprintf(&b, "Announce that the player is paid out %d in total. Do not state any other amount.\n", in.Settlement.Payout)
			}
		}
	}

	return b.String()
}

// visibleDealer describes the dealer's hand without leaking the hidden card
func visibleDealer(in ContextInput) string {
	if in.HasStood {
		return in.DealerHand.String()
	}

	if len(in.DealerHand) == 0 || in.DealerHand[0].Value == "" {
		return "unknown"
	}

	return fmt.Sprintf("%s and one hidden card", in.DealerHand[0])
}

func lastCardText(in ContextInput) string {
	if in.LastDrawnCard == nil {
		return "a card"
	}

	return in.LastDrawnCard.String()
}
