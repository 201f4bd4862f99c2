package cohere

import (
	"context"
	"errors"
	"fmt"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/cohere-ai/cohere-go/v2/option"
	"github.com/mgomes/colloc/internal/collocation"
)

type Client struct {
	client     *cohereclient.Client
	chatModel  string
	embedModel string
	embedDim   int
}

var _ collocation.Analyzer = (*Client)(nil)

// NewClient builds a client that makes a single attempt per request.
func NewClient(apiKey, chatModel, embedModel string, embedDim int, opts ...option.RequestOption) *Client {
	opts = append([]option.RequestOption{
		cohereclient.WithToken(apiKey),
		cohereclient.WithMaxAttempts(1),
	}, opts...)
	client := cohereclient.NewClient(opts...)
	return &Client{
		client:     client,
		chatModel:  chatModel,
		embedModel: embedModel,
		embedDim:   embedDim,
	}
}

func (c *Client) ValidateAPIKey(ctx context.Context) error {
	_, err := c.client.Models.List(ctx, &cohere.ModelsListRequest{})
	if err != nil {
		return fmt.Errorf("invalid API key: %w", err)
	}
	return nil
}

// Analyze asks the chat model for the collocations of word.
func (c *Client) Analyze(ctx context.Context, word string) ([]collocation.Collocation, error) {
	model := c.chatModel
	temperature := 0.3

	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message:     collocation.BuildPrompt(word),
		Model:       &model,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, collocation.NewServiceError(err)
	}

	if resp == nil || resp.Text == "" {
		return nil, &collocation.ServiceError{Message: "Cohere returned an empty response"}
	}

	items, err := collocation.ParseResponse(resp.Text)
	if err != nil {
		return nil, &collocation.ServiceError{Message: "Could not read the Cohere response", Err: err}
	}
	return items, nil
}

func (c *Client) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := c.embed(ctx, []string{query}, cohere.EmbedInputTypeSearchQuery)
	if err != nil {
		if errors.Is(err, errNoEmbeddings) {
			return nil, fmt.Errorf("no embedding returned")
		}
		return nil, fmt.Errorf("embed query failed: %w", err)
	}

	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	return embeddings[0], nil
}

// Dim reports the embedding dimension requested from the API.
func (c *Client) Dim() int {
	return c.embedDim
}

func float64sToFloat32s(f64s []float64) []float32 {
	f32s := make([]float32, len(f64s))
	for i, v := range f64s {
		f32s[i] = float32(v)
	}
	return f32s
}

var errNoEmbeddings = errors.New("no embeddings returned")

func (c *Client) embed(ctx context.Context, texts []string, inputType cohere.EmbedInputType) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddingTypes := []cohere.EmbeddingType{cohere.EmbeddingTypeFloat}
	outputDim := c.embedDim

	resp, err := c.client.V2.Embed(ctx, &cohere.V2EmbedRequest{
		Texts:           texts,
		Model:           c.embedModel,
		InputType:       inputType,
		EmbeddingTypes:  embeddingTypes,
		OutputDimension: &outputDim,
	})
	if err != nil {
		return nil, err
	}

	if resp.Embeddings == nil || resp.Embeddings.Float == nil {
		return nil, errNoEmbeddings
	}

	results := make([][]float32, len(resp.Embeddings.Float))
	for i, emb := range resp.Embeddings.Float {
		results[i] = float64sToFloat32s(emb)
	}

	return results, nil
}
