package deck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ErrUpstreamUnavailable is an error when the card service cannot be reached
// or returns an unusable response
var ErrUpstreamUnavailable = fmt.Errorf("card service unavailable")

// ErrDrawExhausted is an error when a draw is attempted and the deck does not
// have enough cards left. Decks are finite and are never reshuffled.
var ErrDrawExhausted = fmt.Errorf("no cards left in deck")

const defaultTimeout = time.Second * 10

// Gateway talks to the external card-draw service. It never fabricates cards
// and never reissues cards already drawn from a deck.
type Gateway struct {
	baseURL string
	client  *http.Client
}

// NewGateway returns a new Gateway for the card service at baseURL
func NewGateway(baseURL string) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

type newDeckResponse struct {
	Success bool   `json:"success"`
	DeckID  string `json:"deck_id"`
}

type drawResponse struct {
	Success   bool   `json:"success"`
	Cards     []Card `json:"cards"`
	Remaining int    `json:"remaining"`
}

// NewDeck asks the card service for a freshly shuffled single deck and
// returns its identifier
func (g *Gateway) NewDeck(ctx context.Context) (string, error) {
	var payload newDeckResponse
	if err := g.getJSON(ctx, "/deck/new/shuffle/?deck_count=1", &payload); err != nil {
		return "", err
	}

	if !payload.Success || payload.DeckID == "" {
		return "", ErrUpstreamUnavailable
	}

	return payload.DeckID, nil
}

// Draw draws exactly count cards from the deck. If the deck cannot supply
// that many cards, ErrDrawExhausted is returned and no cards are returned.
func (g *Gateway) Draw(ctx context.Context, deckID string, count int) ([]Card, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be greater than zero")
	}

	var payload drawResponse
	path := fmt.Sprintf("/deck/%s/draw/?count=%d", deckID, count)
	if err := g.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}

	if !payload.Success {
		// the service reports a failed draw on an empty deck as success=false
		if payload.Remaining < count {
			return nil, ErrDrawExhausted
		}

		return nil, ErrUpstreamUnavailable
	}

	if len(payload.Cards) != count {
		return nil, ErrDrawExhausted
	}

	return payload.Cards, nil
}

func (g *Gateway) getJSON(ctx context.Context, path string, payload interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	return nil
}
