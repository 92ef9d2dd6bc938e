package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"blackjackdealer-server/internal/config"
	"blackjackdealer-server/internal/mux"
	"blackjackdealer-server/pkg/deck"
	"blackjackdealer-server/pkg/narrate"
	"blackjackdealer-server/pkg/retrieval"
)

const readTimeout = time.Second * 5

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":8000", "the listen address")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	setupLogger()

	cfg := config.Instance()
	if cfg.GenAI.APIKey == "" {
		logrus.Fatal("missing Gemini API key in configuration")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GenAI.APIKey))
	if err != nil {
		logrus.WithError(err).Fatal("could not create generative client")
	}
	defer client.Close()

	rules, err := os.ReadFile(cfg.RulesPath)
	if err != nil {
		logrus.WithError(err).WithField("path", cfg.RulesPath).Fatal("could not read rules document")
	}

	store, err := retrieval.NewStore(ctx, client.EmbeddingModel(cfg.GenAI.EmbeddingModel), string(rules),
		cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	if err != nil {
		logrus.WithError(err).Fatal("could not index rules document")
	}
	logrus.WithField("chunks", store.Len()).Info("rules document indexed")

	gateway := deck.NewGateway(cfg.DeckAPIURL)
	narrator := narrate.NewNarrator(client, cfg.GenAI.Model)

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})

	srv := &http.Server{
		Addr:        *addr,
		Handler:     loggingHandler(c.Handler(mux.NewMux(Version, gateway, store, narrator))),
		ReadTimeout: readTimeout,
		// no write timeout: narration responses stream for as long as the model talks
	}

	logrus.WithField("addr", srv.Addr).Info("listening")
	logrus.Fatal(srv.ListenAndServe())
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
