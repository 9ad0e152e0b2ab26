package llm

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/spherical/book2md/internal/config"
	"github.com/spherical/book2md/internal/domain"
)

// Generator is the part of llms.Model the client needs.
type Generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Client sends page images to a Gemini model
type Client struct {
	model     Generator
	modelName string
	retry     config.RetryConfig
	logger    *domain.Logger
}

// NewClient validates credentials and creates a Gemini-backed client. It
// performs no network I/O.
func NewClient(ctx context.Context, cfg config.GeminiConfig, retry config.RetryConfig) (*Client, error) {
	if err := cfg.CheckCredentials(); err != nil {
		return nil, err
	}

	model, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.ModelName()),
	)
	if err != nil {
		return nil, domain.ConfigError("Failed to create Gemini client", err)
	}

	return NewClientWithModel(model, cfg.ModelName(), retry), nil
}

// NewClientWithModel wraps an existing generator, e.g. another langchaingo
// provider or a test double.
func NewClientWithModel(model Generator, modelName string, retry config.RetryConfig) *Client {
	return &Client{
		model:     model,
		modelName: modelName,
		retry:     retry,
		logger:    domain.DefaultLogger.WithPrefix("llm").With("model", modelName),
	}
}

// ModelName returns the model identifier requests are sent to.
func (c *Client) ModelName() string {
	return c.modelName
}

// Extract sends one page image with the fixed prompt and returns the model's
// text unmodified.
func (c *Client) Extract(ctx context.Context, imagePath string) (string, error) {
	data, mimeType, err := loadImage(imagePath)
	if err != nil {
		return "", err
	}

	messages := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(Prompt),
				llms.BinaryPart(mimeType, data),
			},
		},
	}

	c.logger.Debug("Sending %s (%d bytes) to model", imagePath, len(data))

	resp, err := c.generateWithRetry(ctx, messages)
	if err != nil {
		return "", err
	}

	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", domain.APIError("model returned no choices", nil)
	}

	return resp.Choices[0].Content, nil
}

// loadImage reads an image file and checks that it decodes.
func loadImage(imagePath string) ([]byte, string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, "", domain.IOError("Failed to read image", err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", domain.ValidationError(fmt.Sprintf("cannot decode image %s", imagePath), err)
	}

	return data, "image/" + format, nil
}
