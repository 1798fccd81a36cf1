package agents

import (
	"context"
	"fmt"

	"github.com/ttpunch/blog/provider"
)

const criticSystemPrompt = "You are an expert editor and critic. Analyze the article draft for quality, coherence, style, and factual plausibility. Provide a critical review with a score (1-10) and specific improvement points."

// criticContentLimit caps how much article content is sent for review.
const criticContentLimit = 20000

// CriticAgent scores a draft and lists concrete improvement points. The
// critique list feeds the writer's next revision.
type CriticAgent struct {
	model *provider.Structured[CriticReview]
}

// NewCriticAgent builds the critic's model from the config.
func NewCriticAgent(cfg provider.ModelConfig) (*CriticAgent, error) {
	model, err := provider.NewStructured[CriticReview](cfg)
	if err != nil {
		return nil, err
	}
	return &CriticAgent{model: model}, nil
}

// Review critiques the draft and returns a quality score with improvement
// points.
func (a *CriticAgent) Review(ctx context.Context, draft ArticleDraft) (CriticReview, error) {
	user := fmt.Sprintf("Article Title: %s\nContent: %s\n\nReview this draft.",
		draft.Title, truncate(draft.Content, criticContentLimit))
	return a.model.Generate(ctx, criticSystemPrompt, user)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
