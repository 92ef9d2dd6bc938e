package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"blackjackdealer-server/internal/util"
)

// Config provides configuration for the blackjack dealer server
type Config struct {
	loaded bool

	DeckAPIURL string `yaml:"deckApiUrl" envconfig:"deck_api_url"`
	RulesPath  string `yaml:"rulesPath" envconfig:"rules_path"`

	GenAI struct {
		APIKey         string `yaml:"apiKey" envconfig:"api_key"`
		Model          string
		EmbeddingModel string `yaml:"embeddingModel" envconfig:"embedding_model"`
	} `yaml:"genAi" envconfig:"genai"`

	Retrieval struct {
		ChunkSize    int `yaml:"chunkSize" envconfig:"chunk_size"`
		ChunkOverlap int `yaml:"chunkOverlap" envconfig:"chunk_overlap"`
		TopK         int `yaml:"topK" envconfig:"top_k"`
	}

	Bets struct {
		Min int
		Max int
	}

	Log struct {
		Level             string
		DisableAccessLogs bool `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	}
}

var config Config

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration. A missing config file is not an error;
// the defaults plus environment variables are enough to run.
func Load() error {
	config = Config{}

	configFile := util.Getenv("BJD_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err == nil {
		err = yaml.NewDecoder(file).Decode(&config)
		_ = file.Close()
		if err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := envconfig.Process("bjd", &config); err != nil {
		return err
	}

	config.applyDefaults()
	config.loaded = true
	return nil
}

func (c *Config) applyDefaults() {
	if c.DeckAPIURL == "" {
		c.DeckAPIURL = "https://deckofcardsapi.com/api"
	}

	if c.RulesPath == "" {
		c.RulesPath = "blackjack_rules.txt"
	}

	if c.GenAI.Model == "" {
		c.GenAI.Model = "gemini-2.5-flash"
	}

	if c.GenAI.EmbeddingModel == "" {
		c.GenAI.EmbeddingModel = "text-embedding-004"
	}

	if c.Retrieval.ChunkSize == 0 {
		c.Retrieval.ChunkSize = 1000
	}

	if c.Retrieval.ChunkOverlap == 0 {
		c.Retrieval.ChunkOverlap = 200
	}

	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = 3
	}

	if c.Bets.Min == 0 {
		c.Bets.Min = 1
	}
}
