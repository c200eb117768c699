package concierge

import (
	"context"
	"iter"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 1024
)

// AnthropicProvider starts chats backed by the Anthropic Messages API.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
	ok     bool
}

// NewAnthropicProvider builds a provider. Without an API key every StartChat
// returns nil and the concierge answers offline.
func NewAnthropicProvider(apiKey, model string, opts ...option.RequestOption) *AnthropicProvider {
	apiKey = strings.TrimSpace(apiKey)
	if model == "" {
		model = DefaultModel
	}
	p := &AnthropicProvider{model: model, ok: apiKey != ""}
	if p.ok {
		p.client = anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	}
	return p
}

func (p *AnthropicProvider) StartChat(chatContext string) Chat {
	if !p.ok {
		return nil
	}
	return &anthropicChat{
		client: p.client,
		model:  p.model,
		system: SystemPrompt(chatContext),
	}
}

type anthropicChat struct {
	client anthropic.Client
	model  string
	system string

	mu      sync.Mutex
	history []anthropic.MessageParam
}

func (c *anthropicChat) SendMessageStream(ctx context.Context, text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		c.mu.Lock()
		defer c.mu.Unlock()

		user := anthropic.NewUserMessage(anthropic.NewTextBlock(text))
		messages := append(append([]anthropic.MessageParam{}, c.history...), user)

		stream := c.client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
			Model:       anthropic.Model(c.model),
			MaxTokens:   defaultMaxTokens,
			System:      []anthropic.TextBlockParam{{Text: c.system}},
			Messages:    messages,
			Temperature: anthropic.Float(0.7),
		})
		defer stream.Close()

		var reply strings.Builder
		for stream.Next() {
			ev, ok := stream.Current().AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			delta, ok := ev.Delta.AsAny().(anthropic.TextDelta)
			if !ok || delta.Text == "" {
				continue
			}
			reply.WriteString(delta.Text)
			if !yield(delta.Text, nil) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			yield("", err)
			return
		}

		c.history = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(reply.String())))
	}
}
