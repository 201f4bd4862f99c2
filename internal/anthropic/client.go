// Package anthropic implements collocation.Analyzer on top of the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/mgomes/colloc/internal/collocation"
)

const maxTokens = 2048

const systemPrompt = "You are a precise assistant that answers only with JSON."

type Client struct {
	client anthropic.Client
	model  string
}

var _ collocation.Analyzer = (*Client)(nil)

// NewClient creates a client for the given model. Failed calls are not
// retried. Extra request options are passed to the SDK.
func NewClient(apiKey, model string, opts ...option.RequestOption) *Client {
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	return &Client{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

func (c *Client) ValidateAPIKey(ctx context.Context) error {
	if _, err := c.client.Models.List(ctx, anthropic.ModelListParams{}); err != nil {
		return fmt.Errorf("invalid API key: %w", err)
	}
	return nil
}

// Analyze sends the collocation prompt for word and decodes the JSON reply.
func (c *Client) Analyze(ctx context.Context, word string) ([]collocation.Collocation, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(0.3),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(collocation.BuildPrompt(word))),
		},
	})
	if err != nil {
		return nil, collocation.NewServiceError(err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, &collocation.ServiceError{Message: fmt.Sprintf("Empty response for %q", word)}
	}

	items, err := collocation.ParseResponse(text.String())
	if err != nil {
		return nil, &collocation.ServiceError{Message: "Could not read the Anthropic response", Err: err}
	}
	return items, nil
}
