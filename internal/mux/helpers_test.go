package mux

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"blackjackdealer-server/pkg/deck"
	"blackjackdealer-server/pkg/narrate"
)

// fakeSource deals a scripted sequence of cards
type fakeSource struct {
	cards      []deck.Card
	newDeckErr error
	drawErr    error
}

func (s *fakeSource) NewDeck(_ context.Context) (string, error) {
	if s.newDeckErr != nil {
		return "", s.newDeckErr
	}

	return "test-deck", nil
}

func (s *fakeSource) Draw(_ context.Context, _ string, count int) ([]deck.Card, error) {
	if s.drawErr != nil {
		return nil, s.drawErr
	}

	if len(s.cards) < count {
		return nil, deck.ErrDrawExhausted
	}

	cards := s.cards[:count]
	s.cards = s.cards[count:]
	return cards, nil
}

func sourceWithValues(values ...string) *fakeSource {
	cards := make([]deck.Card, len(values))
	for i, v := range values {
		cards[i] = deck.Card{Value: v, Suit: "SPADES"}
	}

	return &fakeSource{cards: cards}
}

type fakeRetriever struct {
	snippets  []string
	err       error
	lastQuery string
	lastK     int
}

func (f *fakeRetriever) SimilaritySearch(_ context.Context, query string, k int) ([]string, error) {
	f.lastQuery = query
	f.lastK = k

	if f.err != nil {
		return nil, f.err
	}

	return f.snippets, nil
}

type fakeNarrator struct {
	fragments      []narrate.Fragment
	text           string
	err            error
	lastSystemText string
}

func (f *fakeNarrator) Narrate(_ context.Context, systemText string, _ []narrate.Message) (string, error) {
	f.lastSystemText = systemText
	return f.text, f.err
}

func (f *fakeNarrator) NarrateStream(_ context.Context, systemText string, _ []narrate.Message) <-chan narrate.Fragment {
	f.lastSystemText = systemText

	ch := make(chan narrate.Fragment, len(f.fragments))
	for _, fragment := range f.fragments {
		ch <- fragment
	}
	close(ch)

	return ch
}

func assertPostWithResp(t *testing.T, ts *httptest.Server, path string, payload interface{}, statusCode int) *http.Response {
	t.Helper()

	var body io.Reader
	switch val := payload.(type) {
	case string:
		body = strings.NewReader(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			t.Error(err)
			return nil
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, body)
	if err != nil {
		t.Error(err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Error(err)
		return nil
	}

	if !assert.Equal(t, statusCode, resp.StatusCode) {
		b, _ := io.ReadAll(resp.Body)
		t.Log(string(b))
		_ = resp.Body.Close()
		return nil
	}

	return resp
}

func assertPost(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int) {
	t.Helper()

	resp := assertPostWithResp(t, ts, path, payload, statusCode)
	if resp == nil {
		return
	}
	defer resp.Body.Close()

	if respObj != nil {
		if err := json.NewDecoder(resp.Body).Decode(respObj); err != nil {
			t.Error(err)
		}
	}
}

func assertGet(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int) {
	t.Helper()

	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Error(err)
		return
	}
	defer resp.Body.Close()

	if !assert.Equal(t, statusCode, resp.StatusCode) {
		return
	}

	if respObj != nil {
		if err := json.NewDecoder(resp.Body).Decode(respObj); err != nil {
			t.Error(err)
		}
	}
}
