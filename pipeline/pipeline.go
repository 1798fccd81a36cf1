// Package pipeline drives the multi-agent content-generation workflow:
// research → plan → write → critic → (revise | seo) → image → done, with a
// bounded critique loop and support for pausing after planning so a human can
// edit the outline before writing resumes.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ttpunch/blog/agents"
	"github.com/ttpunch/blog/graph"
	"github.com/ttpunch/blog/log"
	"github.com/ttpunch/blog/provider"
)

const (
	// qualityThreshold is the critic score below which the draft is sent
	// back to the writer.
	qualityThreshold = 8

	// maxRevisions caps forced revisions beyond the first draft. The critic
	// increments RevisionCount after reviewing, so with the <= comparison a
	// run performs at most three writing passes and RevisionCount tops out
	// at 3.
	maxRevisions = 2
)

// Agent seams. The pipeline talks to its agents through these minimal
// interfaces so tests can substitute deterministic stubs.
type researcher interface {
	PerformResearch(ctx context.Context, topic string) (agents.ResearchData, error)
}

type planner interface {
	CreateOutline(ctx context.Context, planningContext string) (agents.Outline, error)
}

type writer interface {
	WriteDraft(ctx context.Context, outline agents.Outline, research agents.ResearchData) (agents.ArticleDraft, error)
	ReviseDraft(ctx context.Context, current agents.ArticleDraft, feedback []string) (agents.ArticleDraft, error)
}

type critic interface {
	Review(ctx context.Context, draft agents.ArticleDraft) (agents.CriticReview, error)
}

type optimizer interface {
	Optimize(ctx context.Context, draft agents.ArticleDraft) (agents.SeoReview, error)
}

type coverArtist interface {
	GenerateCoverImage(ctx context.Context, subject string) (string, error)
}

// Pipeline is the compiled content-generation graph bound to one provider
// configuration. A Pipeline is safe for concurrent runs: each run owns its
// own State and the agents keep no per-call state.
type Pipeline struct {
	cfg provider.ModelConfig

	research researcher
	planner  planner
	writer   writer
	critic   critic
	seo      optimizer
	image    coverArtist

	def      *graph.StateGraph[State]
	runnable *graph.Runnable[State]
	logger   log.Logger
}

// New constructs every agent eagerly — an unsupported provider or missing
// credential fails here, before any node executes — and compiles the graph.
func New(cfg provider.ModelConfig) (*Pipeline, error) {
	research, err := agents.NewResearchAgent(cfg)
	if err != nil {
		return nil, fmt.Errorf("construct research agent: %w", err)
	}
	plannerAgent, err := agents.NewPlannerAgent(cfg)
	if err != nil {
		return nil, fmt.Errorf("construct planner agent: %w", err)
	}
	writerAgent, err := agents.NewWriterAgent(cfg)
	if err != nil {
		return nil, fmt.Errorf("construct writer agent: %w", err)
	}
	criticAgent, err := agents.NewCriticAgent(cfg)
	if err != nil {
		return nil, fmt.Errorf("construct critic agent: %w", err)
	}
	seoAgent, err := agents.NewSeoAgent(cfg)
	if err != nil {
		return nil, fmt.Errorf("construct seo agent: %w", err)
	}

	imageKey := cfg.ImageAPIKey
	if imageKey == "" {
		imageKey = cfg.APIKey
	}

	return newWithAgents(cfg, research, plannerAgent, writerAgent, criticAgent, seoAgent, agents.NewImageAgent(imageKey))
}

func newWithAgents(cfg provider.ModelConfig, r researcher, pl planner, w writer, c critic, s optimizer, img coverArtist) (*Pipeline, error) {
	p := &Pipeline{
		cfg:      cfg,
		research: r,
		planner:  pl,
		writer:   w,
		critic:   c,
		seo:      s,
		image:    img,
		logger:   log.GetDefaultLogger(),
	}

	def := graph.NewStateGraph[State]()
	def.AddNode(NodeResearch, "Deep research on the topic", p.researchNode)
	def.AddNode(NodePlan, "Create the article outline", p.planNode)
	def.AddNode(NodeWrite, "Write or revise the draft", p.writeNode)
	def.AddNode(NodeCritic, "Review draft quality", p.criticNode)
	def.AddNode(NodeSeo, "Optimize for search", p.seoNode)
	def.AddNode(NodeImage, "Generate the cover image", p.imageNode)

	def.SetEntryPoint(NodeResearch)
	def.AddEdge(NodeResearch, NodePlan)
	def.AddEdge(NodePlan, NodeWrite)
	def.AddEdge(NodeWrite, NodeCritic)
	def.AddConditionalEdge(NodeCritic, p.afterCritic)
	def.AddEdge(NodeSeo, NodeImage)
	def.AddEdge(NodeImage, graph.END)

	runnable, err := def.Compile()
	if err != nil {
		return nil, err
	}
	p.def = def
	p.runnable = runnable
	return p, nil
}

// RunOptions control partial and resumed execution.
type RunOptions struct {
	// StopAfter halts the run right after the named node completes,
	// returning the partial state. Used to pause after planning for human
	// review.
	StopAfter string

	// ResumeFrom enters the graph at the named node, seeding the run from
	// InitialState instead of a fresh record.
	ResumeFrom string

	// InitialState is the persisted state a resumed run starts from.
	InitialState State
}

// RunOption mutates RunOptions.
type RunOption func(*RunOptions)

// WithStopAfter halts the run after the named node completes.
func WithStopAfter(node string) RunOption {
	return func(o *RunOptions) { o.StopAfter = node }
}

// WithResumeFrom enters the graph at the named node with the given state.
func WithResumeFrom(node string, initial State) RunOption {
	return func(o *RunOptions) {
		o.ResumeFrom = node
		o.InitialState = initial
	}
}

// Run drives the graph and always hands back a final, inspectable state: node
// failures are recorded in State.Error rather than returned as errors, so a
// non-nil error here means the run itself could not proceed (bad resume
// state, unknown node), not that an agent failed.
func (p *Pipeline) Run(ctx context.Context, topic string, opts ...RunOption) (State, error) {
	var options RunOptions
	for _, opt := range opts {
		opt(&options)
	}

	var state State
	if options.ResumeFrom != "" {
		// A resumed run starts from persisted fields with a cleared error;
		// the config is whatever this Pipeline was built with.
		state = options.InitialState
		state.Error = ""
		if err := validateResume(options.ResumeFrom, state); err != nil {
			return state, err
		}
	} else {
		state = State{Topic: topic, ImageURL: ""}
	}

	cfg := &graph.Config{
		ResumeFrom: options.ResumeFrom,
		Callbacks:  []graph.CallbackHandler{&stepNotifier{pipeline: p}},
	}
	if options.StopAfter != "" {
		cfg.InterruptAfter = []string{options.StopAfter}
	}

	final, err := p.runnable.InvokeWithConfig(ctx, state, cfg)
	if err != nil {
		var interrupt *graph.GraphInterrupt
		if errors.As(err, &interrupt) && interrupt.Node == options.StopAfter {
			p.logger.Info("pipeline stopped at %s as requested", interrupt.Node)
			return final, nil
		}
		return final, err
	}
	return final, nil
}

// Mermaid renders the content graph as a Mermaid flowchart.
func (p *Pipeline) Mermaid() string {
	return p.def.DrawMermaid()
}

// afterCritic is the quality gate: an error exits the loop immediately, a
// score below the threshold with revisions remaining loops back to the
// writer, anything else proceeds to SEO.
func (p *Pipeline) afterCritic(ctx context.Context, s State) string {
	if s.Error != "" {
		return NodeSeo
	}

	score := 0.0
	if s.CriticReview != nil {
		score = s.CriticReview.Score
	}

	if score < qualityThreshold && s.RevisionCount <= maxRevisions {
		p.logger.Info("critic score %.1f below threshold, revision %d/%d, looping back to writer",
			score, s.RevisionCount, maxRevisions)
		return NodeWrite
	}
	return NodeSeo
}

func (p *Pipeline) researchNode(ctx context.Context, s State) (State, error) {
	if s.Error != "" {
		return s, nil
	}
	p.emit(ctx, StatusResearching)

	data, err := p.callResearch(ctx, s.Topic)
	if err != nil {
		s.Error = fmt.Sprintf("Research failed: %v", err)
		return s, nil
	}
	s.ResearchData = &data
	return s, nil
}

func (p *Pipeline) planNode(ctx context.Context, s State) (State, error) {
	if s.Error != "" {
		return s, nil
	}
	// Still the research phase from the host's perspective until the outline
	// exists.
	p.emit(ctx, StatusResearching)

	researchJSON, err := json.Marshal(s.ResearchData)
	if err != nil {
		s.Error = fmt.Sprintf("Planning failed: %v", err)
		return s, nil
	}
	planningContext := fmt.Sprintf("Topic: %s\nResearch: %s", s.Topic, researchJSON)

	outline, err := p.callPlan(ctx, planningContext)
	if err != nil {
		s.Error = fmt.Sprintf("Planning failed: %v", err)
		return s, nil
	}
	s.Outline = &outline
	return s, nil
}

func (p *Pipeline) writeNode(ctx context.Context, s State) (State, error) {
	if s.Error != "" {
		return s, nil
	}
	p.emit(ctx, StatusWriting)

	if s.Outline == nil {
		s.Error = "Writing failed: no outline available"
		return s, nil
	}

	isRevision := s.RevisionCount > 0 && len(s.CritiqueFeedback) > 0 && s.Draft != nil

	var draft agents.ArticleDraft
	var err error
	if isRevision {
		draft, err = p.callRevise(ctx, *s.Draft, s.CritiqueFeedback)
	} else {
		var research agents.ResearchData
		if s.ResearchData != nil {
			research = *s.ResearchData
		}
		draft, err = p.callWrite(ctx, *s.Outline, research)
	}
	if err != nil {
		s.Error = fmt.Sprintf("Writing failed: %v", err)
		return s, nil
	}
	s.Draft = &draft
	return s, nil
}

func (p *Pipeline) criticNode(ctx context.Context, s State) (State, error) {
	if s.Error != "" {
		return s, nil
	}
	// The critic belongs to the write-review cycle.
	p.emit(ctx, StatusWriting)

	if s.Draft == nil {
		s.Error = "Critique failed: no draft available"
		return s, nil
	}

	review, err := p.callReview(ctx, *s.Draft)
	if err != nil {
		s.Error = fmt.Sprintf("Critique failed: %v", err)
		return s, nil
	}

	s.CriticReview = &review
	s.RevisionCount++
	s.CritiqueFeedback = review.Critique
	return s, nil
}

func (p *Pipeline) seoNode(ctx context.Context, s State) (State, error) {
	if s.Error != "" {
		return s, nil
	}
	p.emit(ctx, StatusOptimizing)

	if s.Draft == nil {
		s.Error = "SEO failed: no draft available"
		return s, nil
	}

	review, err := p.callOptimize(ctx, *s.Draft)
	if err != nil {
		s.Error = fmt.Sprintf("SEO failed: %v", err)
		return s, nil
	}
	s.SeoReview = &review
	return s, nil
}

// imageNode never sets State.Error: cover art failure must not fail the run.
func (p *Pipeline) imageNode(ctx context.Context, s State) (State, error) {
	if s.Error != "" {
		return s, nil
	}

	subject := s.Topic
	if s.Draft != nil && s.Draft.Title != "" {
		subject = s.Draft.Title
	}
	if s.SeoReview != nil && s.SeoReview.ImprovedTitle != "" {
		subject = s.SeoReview.ImprovedTitle
	}

	url, err := p.callImage(ctx, subject)
	if err != nil {
		p.logger.Warn("image generation skipped: %v", err)
		s.ImageURL = ""
		return s, nil
	}
	s.ImageURL = url
	return s, nil
}

// emit forwards a phase label to the host's OnStep callback. Failures are
// logged but never fail the node: status reporting is advisory.
func (p *Pipeline) emit(ctx context.Context, status string) {
	if p.cfg.OnStep == nil {
		return
	}
	if err := p.cfg.OnStep(ctx, status); err != nil {
		p.logger.Warn("status callback failed for %s: %v", status, err)
	}
}
