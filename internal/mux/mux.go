package mux

import (
	"context"
	"net/http"

	gmux "github.com/gorilla/mux"

	"blackjackdealer-server/internal/config"
	"blackjackdealer-server/pkg/blackjack"
	"blackjackdealer-server/pkg/narrate"
)

// Retriever finds the rule passages most relevant to a query
type Retriever interface {
	SimilaritySearch(ctx context.Context, query string, k int) ([]string, error)
}

// Narrator generates dealer narration, either whole or as a stream
type Narrator interface {
	Narrate(ctx context.Context, systemText string, messages []narrate.Message) (string, error)
	NarrateStream(ctx context.Context, systemText string, messages []narrate.Message) <-chan narrate.Fragment
}

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version   string
	cards     blackjack.CardSource
	retriever Retriever
	narrator  Narrator
	config    muxConfig
}

type muxConfig struct {
	// minBet and maxBet bound the wager accepted on start; maxBet of 0 means no cap
	minBet int
	maxBet int

	// topK is how many rule snippets ground each narration
	topK int
}

// NewMux returns a new HTTP mux
func NewMux(version string, cards blackjack.CardSource, retriever Retriever, narrator Narrator) *Mux {
	cfg := config.Instance()

	this := &Mux{
		Router:    gmux.NewRouter(),
		version:   version,
		cards:     cards,
		retriever: retriever,
		narrator:  narrator,
		config: muxConfig{
			minBet: cfg.Bets.Min,
			maxBet: cfg.Bets.Max,
			topK:   cfg.Retrieval.TopK,
		},
	}

	r := this.Router
	r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
	r.Methods(http.MethodPost).Path("/blackjack").Handler(this.postBlackjack())
	r.Methods(http.MethodPost).Path("/blackjack/start").Handler(this.postBlackjackStart())
	r.Methods(http.MethodPost).Path("/blackjack/hit").Handler(this.postBlackjackHit())
	r.Methods(http.MethodPost).Path("/blackjack/stand").Handler(this.postBlackjackStand())

	return this
}
