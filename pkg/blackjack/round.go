package blackjack

import (
	"context"
	"errors"
	"fmt"

	"blackjackdealer-server/pkg/deck"
)

// dealer draws to 17 and stands on any total at or above it
const dealerStandsAt = 17

// ErrInvalidWager is an error when a round is started with a non-positive wager
var ErrInvalidWager = errors.New("wager must be greater than zero")

// CardSource supplies shuffled decks and card draws. *deck.Gateway is the
// production implementation.
type CardSource interface {
	NewDeck(ctx context.Context) (string, error)
	Draw(ctx context.Context, deckID string, count int) ([]deck.Card, error)
}

// Phase is the lifecycle phase of a round
type Phase string

// Phase constants
const (
	// PhaseNotStarted is before any cards have been dealt
	PhaseNotStarted Phase = "not-started"

	// PhasePlayerTurn means the player may hit or stand
	PhasePlayerTurn Phase = "player-turn"

	// PhaseDealerTurn means the dealer is drawing to 17
	PhaseDealerTurn Phase = "dealer-turn"

	// PhaseSettled means the round is over and the payout has been computed
	PhaseSettled Phase = "settled"

	// PhaseAborted means a card draw failed mid-round; the round can never settle
	PhaseAborted Phase = "aborted"
)

// Round is one complete play from start to settlement. It owns the player
// and dealer hands for the duration of the round. Callers must not issue
// overlapping mutating calls against the same round.
type Round struct {
	DeckID     string
	PlayerHand Hand
	DealerHand Hand
	Wager      int
	HasStood   bool
	Phase      Phase

	source  CardSource
	outcome *Settlement
}

// NewRound returns a round ready to be started
func NewRound(source CardSource, wager int) *Round {
	return &Round{
		Wager:  wager,
		Phase:  PhaseNotStarted,
		source: source,
	}
}

// ResumeRound reconstructs an in-progress round from client-held state. The
// server keeps no session state between requests.
func ResumeRound(source CardSource, deckID string, playerHand, dealerHand Hand, wager int) *Round {
	return &Round{
		DeckID:     deckID,
		PlayerHand: playerHand.Clone(),
		DealerHand: dealerHand.Clone(),
		Wager:      wager,
		Phase:      PhasePlayerTurn,
		source:     source,
	}
}

// Start acquires a new deck, deals two cards each to the player and the
// dealer, and moves the round to the player's turn
func (r *Round) Start(ctx context.Context) error {
	if r.Phase != PhaseNotStarted {
		return fmt.Errorf("cannot start from phase: %s", r.Phase)
	}

	if r.Wager <= 0 {
		return ErrInvalidWager
	}

	deckID, err := r.source.NewDeck(ctx)
	if err != nil {
		return err
	}

	cards, err := r.source.Draw(ctx, deckID, 4)
	if err != nil {
		return err
	}

	r.DeckID = deckID
	r.PlayerHand = Hand{cards[0], cards[1]}
	r.DealerHand = Hand{cards[2], cards[3]}
	r.HasStood = false
	r.Phase = PhasePlayerTurn

	return nil
}

// Hit draws one card for the player. A hit that busts the hand settles the
// round immediately; the dealer does not draw.
func (r *Round) Hit(ctx context.Context) (deck.Card, error) {
	if r.Phase != PhasePlayerTurn {
		return deck.Card{}, fmt.Errorf("cannot hit from phase: %s", r.Phase)
	}

	cards, err := r.source.Draw(ctx, r.DeckID, 1)
	if err != nil {
		return deck.Card{}, err
	}

	r.PlayerHand.AddCard(cards[0])
	if r.PlayerHand.IsBust() {
		r.settle()
	}

	return cards[0], nil
}

// Stand ends the player's turn and runs the dealer's draws. The dealer draws
// one card at a time while their total is below 17 and stands on any total at
// or above it, busted or not. Each post-draw hand is returned as a snapshot
// in draw order, followed by the terminal hand, so callers can reveal the
// dealer's turn one card at a time. If a draw fails, the snapshots taken so
// far are returned along with the error and the round is aborted.
func (r *Round) Stand(ctx context.Context) ([]Hand, error) {
	if r.Phase != PhasePlayerTurn {
		return nil, fmt.Errorf("cannot stand from phase: %s", r.Phase)
	}

	r.HasStood = true
	r.Phase = PhaseDealerTurn

	steps := make([]Hand, 0, 1)
	for r.DealerHand.Value() < dealerStandsAt {
		cards, err := r.source.Draw(ctx, r.DeckID, 1)
		if err != nil {
			r.Phase = PhaseAborted
			return steps, err
		}

		r.DealerHand.AddCard(cards[0])
		steps = append(steps, r.DealerHand.Clone())
	}

	steps = append(steps, r.DealerHand.Clone())
	r.settle()

	return steps, nil
}

// Settlement returns the round's outcome, or false if the round hasn't settled
func (r *Round) Settlement() (*Settlement, bool) {
	if r.outcome == nil {
		return nil, false
	}

	return r.outcome, true
}

// VisibleDealerHand returns the dealer hand safe to show the player. Until
// the player stands, the dealer's second card is replaced with the hidden
// placeholder.
func (r *Round) VisibleDealerHand() Hand {
	if r.HasStood || len(r.DealerHand) < 2 {
		return r.DealerHand.Clone()
	}

	return Hand{r.DealerHand[0], deck.Hidden()}
}

// settle computes the outcome exactly once. An aborted round never settles,
// and a settled round never settles again.
func (r *Round) settle() {
	if r.outcome != nil || r.Phase == PhaseAborted {
		return
	}

	r.outcome = &Settlement{
		Payout:      Settle(r.PlayerHand.Value(), r.DealerHand.Value(), r.Wager),
		PlayerTotal: r.PlayerHand.Value(),
		DealerTotal: r.DealerHand.Value(),
		DealerHand:  r.DealerHand.Clone(),
	}
	r.Phase = PhaseSettled
}
