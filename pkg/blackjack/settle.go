package blackjack

// Settlement is the outcome of a completed round. Payout is the total amount
// returned to the player, including their stake; the wager itself was
// committed at round start, so a payout of 0 means the stake is lost.
type Settlement struct {
	Payout      int  `json:"payout"`
	PlayerTotal int  `json:"playerTotal"`
	DealerTotal int  `json:"dealerTotal"`
	DealerHand  Hand `json:"dealerCards"`
}

// Settle computes the payout for the given final totals and wager.
// A busted player loses regardless of the dealer's total. A player total of
// exactly 21 pays out at 3:2 (rounded down). Otherwise a dealer bust or a
// higher player total pays even money, equal totals push the stake back, and
// a higher dealer total loses the stake.
func Settle(playerTotal, dealerTotal, wager int) int {
	switch {
	case playerTotal > BustThreshold:
		return 0
	case playerTotal == BustThreshold:
		return wager * 3 / 2
	case dealerTotal > BustThreshold:
		return wager * 2
	case playerTotal > dealerTotal:
		return wager * 2
	case playerTotal == dealerTotal:
		return wager
	default:
		return 0
	}
}
