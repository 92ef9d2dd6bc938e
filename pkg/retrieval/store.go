// Package retrieval indexes the blackjack rules document so the narration
// prompt can be grounded in the passages most relevant to the player's
// question.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
)

// ErrUpstreamUnavailable is an error when the embedding service fails
var ErrUpstreamUnavailable = errors.New("embedding service unavailable")

// Embedder turns text into an embedding vector. *genai.EmbeddingModel is the
// production implementation.
type Embedder interface {
	EmbedContent(ctx context.Context, parts ...genai.Part) (*genai.EmbedContentResponse, error)
}

type chunk struct {
	text   string
	vector []float32
}

// Store is an in-memory vector index over the chunks of a rules document.
// It is built once at startup and read-only afterwards, so it is safe for
// concurrent searches.
type Store struct {
	embedder Embedder
	chunks   []chunk
}

// NewStore splits text into overlapping chunks, embeds each one, and returns
// the ready-to-search store
func NewStore(ctx context.Context, embedder Embedder, text string, chunkSize, chunkOverlap int) (*Store, error) {
	pieces := SplitText(text, chunkSize, chunkOverlap)
	if len(pieces) == 0 {
		return nil, errors.New("document is empty")
	}

	chunks := make([]chunk, len(pieces))
	for i, piece := range pieces {
		vector, err := embed(ctx, embedder, piece)
		if err != nil {
			return nil, err
		}

		chunks[i] = chunk{text: piece, vector: vector}
	}

	logrus.WithField("chunks", len(chunks)).Debug("indexed document")

	return &Store{
		embedder: embedder,
		chunks:   chunks,
	}, nil
}

// Len returns the number of indexed chunks
func (s *Store) Len() int {
	return len(s.chunks)
}

// SimilaritySearch returns the k chunks most similar to the query, best
// match first. An empty query still returns results; ordering is then
// arbitrary but deterministic.
func (s *Store) SimilaritySearch(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than zero")
	}

	queryVector, err := embed(ctx, s.embedder, query)
	if err != nil {
		return nil, err
	}

	type scored struct {
		index int
		score float64
	}

	scores := make([]scored, len(s.chunks))
	for i, c := range s.chunks {
		scores[i] = scored{index: i, score: cosineSimilarity(queryVector, c.vector)}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if k > len(scores) {
		k = len(scores)
	}

	results := make([]string, k)
	for i := 0; i < k; i++ {
		results[i] = s.chunks[scores[i].index].text
	}

	return results, nil
}

func embed(ctx context.Context, embedder Embedder, text string) ([]float32, error) {
	resp, err := embedder.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, ErrUpstreamUnavailable
	}

	return resp.Embedding.Values, nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SplitText splits text into chunks of at most size bytes with the given
// overlap between consecutive chunks. Splits prefer paragraph, then line,
// then word boundaries.
func SplitText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if size <= 0 {
		return []string{text}
	}

	if overlap >= size {
		overlap = size / 2
	}

	chunks := make([]string, 0)
	for start := 0; start < len(text); {
		if start+size >= len(text) {
			chunks = append(chunks, strings.TrimSpace(text[start:]))
			break
		}

		cut := lastBoundary(text[start : start+size])
		if cut <= overlap {
			cut = size
		}

		if piece := strings.TrimSpace(text[start : start+cut]); piece != "" {
			chunks = append(chunks, piece)
		}

		start += cut - overlap
	}

	return chunks
}

// lastBoundary returns the index just past the best break point in the window
func lastBoundary(window string) int {
	for _, sep := range []string{"\n\n", "\n", " "} {
		if i := strings.LastIndex(window, sep); i > 0 {
			return i + len(sep)
		}
	}

	return len(window)
}
