package agents

import (
	"context"
	"fmt"

	"github.com/ttpunch/blog/provider"
)

const seoSystemPrompt = "You are an SEO expert. Analyze the article and provide optimization feedback. Suggest a better title and excerpt if needed."

// seoContentLimit caps how much article content is sent for optimization.
const seoContentLimit = 15000

// SeoAgent analyzes a finished draft for search optimization.
type SeoAgent struct {
	model *provider.Structured[SeoReview]
}

// NewSeoAgent builds the SEO agent's model from the config.
func NewSeoAgent(cfg provider.ModelConfig) (*SeoAgent, error) {
	model, err := provider.NewStructured[SeoReview](cfg)
	if err != nil {
		return nil, err
	}
	return &SeoAgent{model: model}, nil
}

// Optimize reviews the draft and returns optimization suggestions.
func (a *SeoAgent) Optimize(ctx context.Context, draft ArticleDraft) (SeoReview, error) {
	user := fmt.Sprintf("Article Title: %s\nContent: %s\n\nAnalyze and optimize.",
		draft.Title, truncate(draft.Content, seoContentLimit))
	return a.model.Generate(ctx, seoSystemPrompt, user)
}
