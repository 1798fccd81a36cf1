package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/ttpunch/blog/agents"
	"github.com/ttpunch/blog/log"
)

// stepContext applies the optional per-node deadline. A deadline hit surfaces
// through the node's normal "<Node> failed: ..." error contract.
func (p *Pipeline) stepContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.StepTimeout > 0 {
		return context.WithTimeout(ctx, p.cfg.StepTimeout)
	}
	return ctx, func() {}
}

// mapTimeout rewrites a deadline error so the state error reads "timed out".
func mapTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.New("timed out")
	}
	return err
}

func (p *Pipeline) callResearch(ctx context.Context, topic string) (agents.ResearchData, error) {
	ctx, cancel := p.stepContext(ctx)
	defer cancel()
	data, err := p.research.PerformResearch(ctx, topic)
	return data, mapTimeout(err)
}

func (p *Pipeline) callPlan(ctx context.Context, planningContext string) (agents.Outline, error) {
	ctx, cancel := p.stepContext(ctx)
	defer cancel()
	outline, err := p.planner.CreateOutline(ctx, planningContext)
	return outline, mapTimeout(err)
}

func (p *Pipeline) callWrite(ctx context.Context, outline agents.Outline, research agents.ResearchData) (agents.ArticleDraft, error) {
	ctx, cancel := p.stepContext(ctx)
	defer cancel()
	draft, err := p.writer.WriteDraft(ctx, outline, research)
	return draft, mapTimeout(err)
}

func (p *Pipeline) callRevise(ctx context.Context, current agents.ArticleDraft, feedback []string) (agents.ArticleDraft, error) {
	ctx, cancel := p.stepContext(ctx)
	defer cancel()
	draft, err := p.writer.ReviseDraft(ctx, current, feedback)
	return draft, mapTimeout(err)
}

func (p *Pipeline) callReview(ctx context.Context, draft agents.ArticleDraft) (agents.CriticReview, error) {
	ctx, cancel := p.stepContext(ctx)
	defer cancel()
	review, err := p.critic.Review(ctx, draft)
	return review, mapTimeout(err)
}

func (p *Pipeline) callOptimize(ctx context.Context, draft agents.ArticleDraft) (agents.SeoReview, error) {
	ctx, cancel := p.stepContext(ctx)
	defer cancel()
	review, err := p.seo.Optimize(ctx, draft)
	return review, mapTimeout(err)
}

func (p *Pipeline) callImage(ctx context.Context, subject string) (string, error) {
	ctx, cancel := p.stepContext(ctx)
	defer cancel()
	return p.image.GenerateCoverImage(ctx, subject)
}

// stepNotifier forwards the uppercase node name to the host after each node
// completes, matching the node-name-derived status vocabulary.
type stepNotifier struct {
	pipeline *Pipeline
}

func (n *stepNotifier) OnChainStart(ctx context.Context, inputs any, runID string) {
	log.Debug("pipeline run %s started", runID)
}

func (n *stepNotifier) OnChainEnd(ctx context.Context, outputs any, runID string) {
	log.Debug("pipeline run %s finished", runID)
}

func (n *stepNotifier) OnChainError(ctx context.Context, err error, runID string) {
	log.Error("pipeline run %s failed: %v", runID, err)
}

func (n *stepNotifier) OnGraphStep(ctx context.Context, nodeName string, state any) {
	n.pipeline.emit(ctx, strings.ToUpper(nodeName))
}
