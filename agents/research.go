package agents

import (
	"context"
	"fmt"

	"github.com/ttpunch/blog/provider"
)

const (
	topicSystemPrompt = "You are an expert content strategist. Research and identify trending, high-value blog topics for a specific niche. Focus on topics that are evergreen or currently trending."

	researchSystemPrompt = "You are a deep-dive research assistant. Your goal is to gather facts, context, and a suggested structure for a blog post on a given topic. Be thorough and provide high-quality data that a writer can use."
)

// ResearchAgent discovers topics for a niche and performs deep research on a
// chosen topic.
type ResearchAgent struct {
	topicModel    *provider.Structured[TopicSuggestions]
	researchModel *provider.Structured[ResearchData]
	verifySources bool
}

// NewResearchAgent builds the research agent's models from the config.
func NewResearchAgent(cfg provider.ModelConfig) (*ResearchAgent, error) {
	topicModel, err := provider.NewStructured[TopicSuggestions](cfg)
	if err != nil {
		return nil, err
	}
	researchModel, err := provider.NewStructured[ResearchData](cfg)
	if err != nil {
		return nil, err
	}
	return &ResearchAgent{
		topicModel:    topicModel,
		researchModel: researchModel,
		verifySources: cfg.VerifySources,
	}, nil
}

// FindTopics generates diverse topic ideas for the given niche.
func (a *ResearchAgent) FindTopics(ctx context.Context, niche string) (TopicSuggestions, error) {
	user := fmt.Sprintf("Niche: %s. Generate 5 diverse topic ideas.", niche)
	return a.topicModel.Generate(ctx, topicSystemPrompt, user)
}

// PerformResearch gathers structured research findings for the topic.
func (a *ResearchAgent) PerformResearch(ctx context.Context, topic string) (ResearchData, error) {
	user := fmt.Sprintf("Topic: %s. Conduct deep research and provide structured context.", topic)
	data, err := a.researchModel.Generate(ctx, researchSystemPrompt, user)
	if err != nil {
		return ResearchData{}, err
	}

	if a.verifySources {
		data.Sources = enrichSources(ctx, data.Sources)
	}

	return data, nil
}
