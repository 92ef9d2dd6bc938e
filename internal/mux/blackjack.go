package mux

import (
	"errors"
	"fmt"
	"net/http"

	"blackjackdealer-server/pkg/blackjack"
	"blackjackdealer-server/pkg/deck"
)

type startPayload struct {
	Bet int `json:"bet"`
}

type startResponse struct {
	DeckID      string         `json:"deckId"`
	PlayerCards blackjack.Hand `json:"playerCards"`
	DealerCards blackjack.Hand `json:"dealerCards"`

	// ResponseDealerCards is the dealer hand safe to render: the second card
	// stays hidden until the player stands
	ResponseDealerCards blackjack.Hand `json:"responseDealerCards"`
}

func (m *Mux) postBlackjackStart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sp startPayload
		if !decodeRequest(w, r, &sp) {
			return
		}

		if sp.Bet < m.config.minBet {
			writeJSONError(w, http.StatusBadRequest, fmt.Errorf("bet must be at least %d", m.config.minBet))
			return
		}

		if m.config.maxBet > 0 && sp.Bet > m.config.maxBet {
			writeJSONError(w, http.StatusBadRequest, fmt.Errorf("bet cannot exceed %d", m.config.maxBet))
			return
		}

		round := blackjack.NewRound(m.cards, sp.Bet)
		if err := round.Start(r.Context()); err != nil {
			writeUpstreamError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, startResponse{
			DeckID:              round.DeckID,
			PlayerCards:         round.PlayerHand,
			DealerCards:         round.DealerHand,
			ResponseDealerCards: round.VisibleDealerHand(),
		})
	}
}

type hitPayload struct {
	DeckID string `json:"deckId"`
}

type hitResponse struct {
	Card deck.Card `json:"card"`
}

func (m *Mux) postBlackjackHit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var hp hitPayload
		if !decodeRequest(w, r, &hp) {
			return
		}

		if hp.DeckID == "" {
			writeJSONError(w, http.StatusBadRequest, errors.New("deckId is required"))
			return
		}

		cards, err := m.cards.Draw(r.Context(), hp.DeckID, 1)
		if err != nil {
			writeUpstreamError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, hitResponse{Card: cards[0]})
	}
}

type standPayload struct {
	DeckID      string         `json:"deckId"`
	DealerCards blackjack.Hand `json:"dealerCards"`

	// PlayerCards and Bet are optional; when present, the response includes
	// the settlement for the round
	PlayerCards blackjack.Hand `json:"playerCards,omitempty"`
	Bet         int            `json:"bet,omitempty"`
}

type standStep struct {
	DealerCards blackjack.Hand `json:"dealerCards"`
}

type standResponse struct {
	Steps      []standStep           `json:"steps"`
	Settlement *blackjack.Settlement `json:"settlement,omitempty"`
}

func (m *Mux) postBlackjackStand() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sp standPayload
		if !decodeRequest(w, r, &sp) {
			return
		}

		if sp.DeckID == "" {
			writeJSONError(w, http.StatusBadRequest, errors.New("deckId is required"))
			return
		}

		if len(sp.DealerCards) == 0 {
			writeJSONError(w, http.StatusBadRequest, errors.New("dealerCards are required"))
			return
		}

		round := blackjack.ResumeRound(m.cards, sp.DeckID, sp.PlayerCards, sp.DealerCards, sp.Bet)
		steps, err := round.Stand(r.Context())
		if err != nil {
			writeUpstreamError(w, err)
			return
		}

		resp := standResponse{Steps: make([]standStep, len(steps))}
		for i, step := range steps {
			resp.Steps[i] = standStep{DealerCards: step}
		}

		// settlement only makes sense if the client told us the player's hand
		if len(sp.PlayerCards) > 0 {
			if settlement, ok := round.Settlement(); ok {
				resp.Settlement = settlement
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
