package mux

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"blackjackdealer-server/pkg/blackjack"
	"blackjackdealer-server/pkg/deck"
	"blackjackdealer-server/pkg/narrate"
)

type narratePayload struct {
	Action        narrate.Action    `json:"action"`
	Messages      []narrate.Message `json:"messages"`
	PlayerCards   blackjack.Hand    `json:"playerCards"`
	DealerCards   blackjack.Hand    `json:"dealerCards"`
	HasStood      bool              `json:"hasStood"`
	LastDrawnCard *deck.Card        `json:"lastDrawnCard"`
	Bet           int               `json:"bet"`
}

type narrateResponse struct {
	Text string `json:"text"`
}

// postBlackjack narrates the current game event. The response is a chunked
// text/plain stream of narration fragments unless the client asks for a
// single JSON result with ?stream=false.
func (m *Mux) postBlackjack() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var np narratePayload
		if !decodeRequest(w, r, &np) {
			return
		}

		if !np.Action.IsValid() {
			writeJSONError(w, http.StatusBadRequest, fmt.Errorf("unknown action: %s", np.Action))
			return
		}

		log := logrus.WithField("narration", uuid.New().String())

		snippets, err := m.retriever.SimilaritySearch(r.Context(), lastUserMessage(np.Messages), m.config.topK)
		if err != nil {
			writeUpstreamError(w, err)
			return
		}

		in := narrate.ContextInput{
			Action:        np.Action,
			PlayerHand:    np.PlayerCards,
			DealerHand:    np.DealerCards,
			HasStood:      np.HasStood,
			LastDrawnCard: np.LastDrawnCard,
			Wager:         np.Bet,
			Rules:         strings.Join(snippets, "\n\n"),
		}

		// the house decides the outcome before the dealer opens their mouth
		if np.Action == narrate.ActionStand && len(np.PlayerCards) > 0 {
			in.Settlement = &blackjack.Settlement{
				Payout:      blackjack.Settle(np.PlayerCards.Value(), np.DealerCards.Value(), np.Bet),
				PlayerTotal: np.PlayerCards.Value(),
				DealerTotal: np.DealerCards.Value(),
				DealerHand:  np.DealerCards,
			}
		}

		systemText := narrate.BuildContext(in)

		if r.URL.Query().Get("stream") == "false" {
			text, err := m.narrator.Narrate(r.Context(), systemText, np.Messages)
			if err != nil {
				writeUpstreamError(w, err)
				return
			}

			writeJSON(w, http.StatusOK, narrateResponse{Text: text})
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")

		sent, err := narrate.Relay(w, m.narrator.NarrateStream(r.Context(), systemText, np.Messages))
		if err != nil {
			if sent == 0 {
				writeUpstreamError(w, err)
				return
			}

			// bytes already on the wire stay; ending the stream early tells
			// the client the response is incomplete
			log.WithError(err).WithField("bytesSent", sent).Error("narration stream interrupted")
			return
		}

		log.WithField("bytesSent", sent).Debug("narration complete")
	}
}

// lastUserMessage returns the most recent non-blank user message, which
// grounds the rules retrieval
func lastUserMessage(messages []narrate.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" && strings.TrimSpace(messages[i].Content) != "" {
			return messages[i].Content
		}
	}

	return ""
}
