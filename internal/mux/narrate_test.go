package mux

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"blackjackdealer-server/pkg/blackjack"
	"blackjackdealer-server/pkg/narrate"
	"blackjackdealer-server/pkg/retrieval"
)

func narrateStartPayload() narratePayload {
	return narratePayload{
		Action: narrate.ActionStart,
		Messages: []narrate.Message{
			{Role: "user", Content: "deal me in"},
		},
		PlayerCards: blackjack.Hand{
			{Value: "ACE", Suit: "SPADES"},
			{Value: "9", Suit: "HEARTS"},
		},
		DealerCards: blackjack.Hand{
			{Value: "KING", Suit: "CLUBS"},
			{Value: "7", Suit: "DIAMONDS"},
		},
		Bet: 100,
	}
}

func TestPostBlackjack_streams(t *testing.T) {
	a := assert.New(t)

	retriever := &fakeRetriever{snippets: []string{"rule one", "rule two"}}
	narrator := &fakeNarrator{fragments: []narrate.Fragment{
		{Text: "Welcome "},
		{Text: "to the table!"},
	}}

	ts := httptest.NewServer(newTestMux(nil, retriever, narrator))
	defer ts.Close()

	resp := assertPostWithResp(t, ts, "/blackjack", narrateStartPayload(), 200)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	a.NoError(err)
	a.Equal("Welcome to the table!", string(body))
	a.Contains(resp.Header.Get("Content-Type"), "text/plain")

	// retrieval was grounded on the player's last message
	a.Equal("deal me in", retriever.lastQuery)
	a.Equal(3, retriever.lastK)

	// the prompt carries the retrieved rules and hides the dealer's hole card
	a.Contains(narrator.lastSystemText, "rule one\n\nrule two")
	a.Contains(narrator.lastSystemText, "KING of CLUBS and one hidden card")
	a.NotContains(narrator.lastSystemText, "7 of DIAMONDS")
}

func TestPostBlackjack_singleShot(t *testing.T) {
	a := assert.New(t)

	narrator := &fakeNarrator{text: "Welcome to the table!"}
	ts := httptest.NewServer(newTestMux(nil, nil, narrator))
	defer ts.Close()

	var nr narrateResponse
	assertPost(t, ts, "/blackjack?stream=false", narrateStartPayload(), &nr, 200)
	a.Equal("Welcome to the table!", nr.Text)
}

func TestPostBlackjack_standIncludesSettlement(t *testing.T) {
	a := assert.New(t)

	narrator := &fakeNarrator{fragments: []narrate.Fragment{{Text: "ok"}}}
	ts := httptest.NewServer(newTestMux(nil, nil, narrator))
	defer ts.Close()

	payload := narrateStartPayload()
	payload.Action = narrate.ActionStand
	payload.HasStood = true

	resp := assertPostWithResp(t, ts, "/blackjack", payload, 200)
	_ = resp.Body.Close()

	// player 20 beats dealer 17; bet 100 pays out 200
	a.Contains(narrator.lastSystemText, "the bet amount was 100 and the payout is 200")
}

func TestPostBlackjack_invalidAction(t *testing.T) {
	ts := httptest.NewServer(newTestMux(nil, nil, nil))
	defer ts.Close()

	payload := narrateStartPayload()
	payload.Action = "double-down"

	var er errorResponse
	assertPost(t, ts, "/blackjack", payload, &er, 400)
	assert.Equal(t, "unknown action: double-down", er.Error)
}

func TestPostBlackjack_retrieverDown(t *testing.T) {
	retriever := &fakeRetriever{err: retrieval.ErrUpstreamUnavailable}
	ts := httptest.NewServer(newTestMux(nil, retriever, nil))
	defer ts.Close()

	var er errorResponse
	assertPost(t, ts, "/blackjack", narrateStartPayload(), &er, 502)
	assert.Equal(t, 502, er.StatusCode)
}

func TestPostBlackjack_generationFailsBeforeFirstFragment(t *testing.T) {
	narrator := &fakeNarrator{fragments: []narrate.Fragment{{Err: narrate.ErrUpstreamUnavailable}}}
	ts := httptest.NewServer(newTestMux(nil, nil, narrator))
	defer ts.Close()

	var er errorResponse
	assertPost(t, ts, "/blackjack", narrateStartPayload(), &er, 502)
	assert.Equal(t, 502, er.StatusCode)
}

func TestPostBlackjack_generationFailsMidStream(t *testing.T) {
	a := assert.New(t)

	narrator := &fakeNarrator{fragments: []narrate.Fragment{
		{Text: "partial"},
		{Err: narrate.ErrUpstreamUnavailable},
	}}
	ts := httptest.NewServer(newTestMux(nil, nil, narrator))
	defer ts.Close()

	// the status was already committed; the body is simply truncated
	resp := assertPostWithResp(t, ts, "/blackjack", narrateStartPayload(), 200)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	a.NoError(err)
	a.Equal("partial", string(body))
}
