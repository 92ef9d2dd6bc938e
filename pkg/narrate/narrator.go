package narrate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
)

// ErrUpstreamUnavailable is an error when the generation service fails
var ErrUpstreamUnavailable = errors.New("generation service unavailable")

// the original dealer ran at 0.4; keeps the narration from drifting
const temperature = 0.4

// Message is a single prior conversation turn from the client
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Fragment is one piece of a streamed narration. A non-nil Err terminates
// the stream.
type Fragment struct {
	Text string
	Err  error
}

// Narrator generates dealer narration with the Gemini API. It supports both
// a one-shot call and a streamed call; the grounding context always travels
// as the system instruction.
type Narrator struct {
	client    *genai.Client
	modelName string
}

// NewNarrator returns a Narrator backed by the given client and model
func NewNarrator(client *genai.Client, modelName string) *Narrator {
	return &Narrator{
		client:    client,
		modelName: modelName,
	}
}

// Narrate generates the full narration in one call
func (n *Narrator) Narrate(ctx context.Context, systemText string, messages []Message) (string, error) {
	history, prompt, ok := splitHistory(messages)
	if !ok {
		// no user turn to respond to; send the grounding text as the prompt
		resp, err := n.model("").GenerateContent(ctx, genai.Text(systemText))
		if err != nil {
			return "", wrapErr(err)
		}

		return responseText(resp), nil
	}

	cs := n.model(systemText).StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", wrapErr(err)
	}

	return responseText(resp), nil
}

// NarrateStream generates the narration as a sequence of fragments. The
// returned channel is closed when the stream ends; if the stream fails, the
// last fragment carries the error. Cancelling ctx stops the producer.
func (n *Narrator) NarrateStream(ctx context.Context, systemText string, messages []Message) <-chan Fragment {
	var iter *genai.GenerateContentResponseIterator

	history, prompt, ok := splitHistory(messages)
	if !ok {
		iter = n.model("").GenerateContentStream(ctx, genai.Text(systemText))
	} else {
		cs := n.model(systemText).StartChat()
		cs.History = history
		iter = cs.SendMessageStream(ctx, genai.Text(prompt))
	}

	out := make(chan Fragment)
	go func() {
		defer close(out)

		for {
			resp, err := iter.Next()
			if err == iterator.Done {
				return
			}

			if err != nil {
				select {
				case out <- Fragment{Err: wrapErr(err)}:
				case <-ctx.Done():
				}
				return
			}

			text := responseText(resp)
			if text == "" {
				continue
			}

			select {
			case out <- Fragment{Text: text}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// model returns a fresh model handle for a single call. A new handle per
// call keeps the per-request system instruction off shared state.
func (n *Narrator) model(systemText string) *genai.GenerativeModel {
	model := n.client.GenerativeModel(n.modelName)
	model.SetTemperature(temperature)

	if systemText != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemText)},
		}
	}

	return model
}

// splitHistory converts prior turns into genai history and pulls out the
// latest user message as the prompt. Blank messages and unknown roles are
// dropped. ok is false if there's no user message at all.
func splitHistory(messages []Message) (history []*genai.Content, prompt string, ok bool) {
	contents := make([]*genai.Content, 0, len(messages))
	lastUser := -1

	for _, msg := range messages {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}

		var role string
		switch msg.Role {
		case "user":
			role = "user"
		case "assistant":
			role = "model"
		default:
			continue
		}

		if role == "user" {
			lastUser = len(contents)
		}

		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	if lastUser == -1 {
		return nil, "", false
	}

	prompt = textOf(contents[lastUser])
	return contents[:lastUser], prompt, true
}

func textOf(content *genai.Content) string {
	var text string
	for _, part := range content.Parts {
		if t, isText := part.(genai.Text); isText {
			text += string(t)
		}
	}

	return text
}

func responseText(resp *genai.GenerateContentResponse) string {
	var text string
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if t, isText := part.(genai.Text); isText {
				text += string(t)
			}
		}
	}

	return text
}

func wrapErr(err error) error {
	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
}
