package agents

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ttpunch/blog/log"
)

// ImageAgent generates a cover image for the article via DALL-E 3. Cover art
// is cosmetic, so failures degrade to an empty URL instead of surfacing as
// errors that would abort a fully-written article.
type ImageAgent struct {
	client imageClient
}

// imageClient is the slice of the OpenAI client the agent uses.
type imageClient interface {
	CreateImage(ctx context.Context, request openai.ImageRequest) (openai.ImageResponse, error)
}

// NewImageAgent creates an image agent. An empty key falls back to the
// OPENAI_API_KEY environment variable.
func NewImageAgent(apiKey string) *ImageAgent {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	return &ImageAgent{client: openai.NewClient(apiKey)}
}

// GenerateCoverImage requests a cover image for the given subject and returns
// its URL. On any failure it logs and returns an empty string with a nil
// error.
func (a *ImageAgent) GenerateCoverImage(ctx context.Context, subject string) (string, error) {
	prompt := fmt.Sprintf("A professional, modern blog cover image for an article about: %s. High quality, 4k, digital art style.", subject)

	resp, err := a.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          openai.CreateImageModelDallE3,
		N:              1,
		Size:           openai.CreateImageSize1792x1024,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		log.Warn("image generation failed: %v", err)
		return "", nil
	}
	if len(resp.Data) == 0 {
		log.Warn("image generation returned no data")
		return "", nil
	}

	return resp.Data[0].URL, nil
}
