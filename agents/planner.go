package agents

import (
	"context"
	"fmt"

	"github.com/ttpunch/blog/provider"
)

const plannerSystemPrompt = "You are an experienced technical writer and editor. Create a comprehensive article outline for the given topic. Logical flow, engagement, and clear structure are key."

// PlannerAgent turns a topic plus research context into an article outline.
type PlannerAgent struct {
	model *provider.Structured[Outline]
}

// NewPlannerAgent builds the planner's model from the config.
func NewPlannerAgent(cfg provider.ModelConfig) (*PlannerAgent, error) {
	model, err := provider.NewStructured[Outline](cfg)
	if err != nil {
		return nil, err
	}
	return &PlannerAgent{model: model}, nil
}

// CreateOutline produces a detailed outline for the given planning context
// (typically the topic combined with research findings).
func (a *PlannerAgent) CreateOutline(ctx context.Context, planningContext string) (Outline, error) {
	user := fmt.Sprintf("Topic: %s. Create a detailed outline.", planningContext)
	return a.model.Generate(ctx, plannerSystemPrompt, user)
}
