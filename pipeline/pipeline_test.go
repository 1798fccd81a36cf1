package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttpunch/blog/agents"
	"github.com/ttpunch/blog/provider"
)

// Deterministic agent stubs. Each counts its calls so tests can assert how
// often the graph visited a node.

type stubResearcher struct {
	calls int
	err   error
}

func (s *stubResearcher) PerformResearch(ctx context.Context, topic string) (agents.ResearchData, error) {
	s.calls++
	if s.err != nil {
		return agents.ResearchData{}, s.err
	}
	return agents.ResearchData{
		Topic:    topic,
		KeyFacts: []string{"fact one"},
		Context:  "background",
	}, nil
}

type stubPlanner struct {
	calls int
	err   error
}

func (s *stubPlanner) CreateOutline(ctx context.Context, planningContext string) (agents.Outline, error) {
	s.calls++
	if s.err != nil {
		return agents.Outline{}, s.err
	}
	return agents.Outline{
		Title:    "Planned Title",
		Slug:     "planned-title",
		Sections: []agents.OutlineSection{{Title: "Intro"}},
	}, nil
}

type stubWriter struct {
	writeCalls  int
	reviseCalls int
	err         error
}

func (s *stubWriter) WriteDraft(ctx context.Context, outline agents.Outline, research agents.ResearchData) (agents.ArticleDraft, error) {
	s.writeCalls++
	if s.err != nil {
		return agents.ArticleDraft{}, s.err
	}
	return agents.ArticleDraft{Title: outline.Title, Content: "draft v1"}, nil
}

func (s *stubWriter) ReviseDraft(ctx context.Context, current agents.ArticleDraft, feedback []string) (agents.ArticleDraft, error) {
	s.reviseCalls++
	if s.err != nil {
		return agents.ArticleDraft{}, s.err
	}
	return agents.ArticleDraft{
		Title:   current.Title,
		Content: fmt.Sprintf("%s (revised %d)", current.Content, s.reviseCalls),
	}, nil
}

// stubCritic returns scores in sequence; the last score repeats.
type stubCritic struct {
	scores []float64
	calls  int
	err    error
}

func (s *stubCritic) Review(ctx context.Context, draft agents.ArticleDraft) (agents.CriticReview, error) {
	if s.err != nil {
		return agents.CriticReview{}, s.err
	}
	idx := s.calls
	if idx >= len(s.scores) {
		idx = len(s.scores) - 1
	}
	s.calls++
	return agents.CriticReview{
		Score:    s.scores[idx],
		Critique: []string{fmt.Sprintf("critique %d", s.calls)},
	}, nil
}

type stubOptimizer struct {
	calls int
	err   error
}

func (s *stubOptimizer) Optimize(ctx context.Context, draft agents.ArticleDraft) (agents.SeoReview, error) {
	s.calls++
	if s.err != nil {
		return agents.SeoReview{}, s.err
	}
	return agents.SeoReview{Score: 85, ImprovedTitle: "Improved " + draft.Title}, nil
}

type stubArtist struct {
	calls       int
	err         error
	lastSubject string
}

func (s *stubArtist) GenerateCoverImage(ctx context.Context, subject string) (string, error) {
	s.calls++
	s.lastSubject = subject
	if s.err != nil {
		return "", s.err
	}
	return "https://img.example/cover.png", nil
}

type stubs struct {
	research *stubResearcher
	planner  *stubPlanner
	writer   *stubWriter
	critic   *stubCritic
	seo      *stubOptimizer
	image    *stubArtist
}

func newTestPipeline(t *testing.T, cfg provider.ModelConfig, s stubs) *Pipeline {
	t.Helper()
	if s.research == nil {
		s.research = &stubResearcher{}
	}
	if s.planner == nil {
		s.planner = &stubPlanner{}
	}
	if s.writer == nil {
		s.writer = &stubWriter{}
	}
	if s.critic == nil {
		s.critic = &stubCritic{scores: []float64{9}}
	}
	if s.seo == nil {
		s.seo = &stubOptimizer{}
	}
	if s.image == nil {
		s.image = &stubArtist{}
	}
	p, err := newWithAgents(cfg, s.research, s.planner, s.writer, s.critic, s.seo, s.image)
	require.NoError(t, err)
	return p
}

func TestRunHappyPath(t *testing.T) {
	s := stubs{critic: &stubCritic{scores: []float64{9}}}
	research := &stubResearcher{}
	writer := &stubWriter{}
	seo := &stubOptimizer{}
	image := &stubArtist{}
	s.research, s.writer, s.seo, s.image = research, writer, seo, image

	p := newTestPipeline(t, provider.ModelConfig{}, s)
	state, err := p.Run(context.Background(), "Go testing")
	require.NoError(t, err)

	assert.Empty(t, state.Error)
	assert.Equal(t, 1, research.calls)
	assert.Equal(t, 1, writer.writeCalls)
	assert.Equal(t, 0, writer.reviseCalls)
	assert.Equal(t, 1, seo.calls)
	assert.Equal(t, 1, image.calls)

	// The critic increments the revision count even on a passing review.
	assert.Equal(t, 1, state.RevisionCount)
	require.NotNil(t, state.Draft)
	assert.Equal(t, "Planned Title", state.Draft.Title)
	require.NotNil(t, state.SeoReview)
	assert.Equal(t, "https://img.example/cover.png", state.ImageURL)
}

func TestRunRevisionLoop(t *testing.T) {
	writer := &stubWriter{}
	critic := &stubCritic{scores: []float64{5, 5, 9}}
	p := newTestPipeline(t, provider.ModelConfig{}, stubs{writer: writer, critic: critic})

	state, err := p.Run(context.Background(), "Go testing")
	require.NoError(t, err)

	assert.Empty(t, state.Error)
	assert.Equal(t, 1, writer.writeCalls)
	assert.Equal(t, 2, writer.reviseCalls)
	assert.Equal(t, 3, critic.calls)
	assert.Equal(t, 3, state.RevisionCount)
	assert.Equal(t, 9.0, state.CriticReview.Score)
}

func TestRunRevisionCapExhausted(t *testing.T) {
	// A critic that never approves still exits the loop after the cap.
	writer := &stubWriter{}
	critic := &stubCritic{scores: []float64{2}}
	seo := &stubOptimizer{}
	p := newTestPipeline(t, provider.ModelConfig{}, stubs{writer: writer, critic: critic, seo: seo})

	state, err := p.Run(context.Background(), "Go testing")
	require.NoError(t, err)

	assert.Empty(t, state.Error)
	assert.Equal(t, 1, writer.writeCalls)
	assert.Equal(t, 2, writer.reviseCalls)
	assert.Equal(t, 3, critic.calls)
	assert.Equal(t, 3, state.RevisionCount)
	// The run still completes through SEO despite the low score.
	assert.Equal(t, 1, seo.calls)
	require.NotNil(t, state.SeoReview)
}

func TestRunStopAfterPlan(t *testing.T) {
	writer := &stubWriter{}
	seo := &stubOptimizer{}
	image := &stubArtist{}
	p := newTestPipeline(t, provider.ModelConfig{}, stubs{writer: writer, seo: seo, image: image})

	state, err := p.Run(context.Background(), "Go testing", WithStopAfter(NodePlan))
	require.NoError(t, err)

	assert.Empty(t, state.Error)
	require.NotNil(t, state.Outline)
	assert.Nil(t, state.Draft)
	assert.Equal(t, 0, writer.writeCalls)
	assert.Equal(t, 0, seo.calls)
	assert.Equal(t, 0, image.calls)
}

func TestRunResumeAtWriteUsesEditedOutline(t *testing.T) {
	research := &stubResearcher{}
	p := newTestPipeline(t, provider.ModelConfig{}, stubs{research: research})

	paused, err := p.Run(context.Background(), "Go testing", WithStopAfter(NodePlan))
	require.NoError(t, err)
	require.Equal(t, 1, research.calls)

	// Simulate the human editing the outline title before approving.
	blob, err := EncodeState(paused)
	require.NoError(t, err)
	edited, err := DecodeState(blob)
	require.NoError(t, err)
	edited.Outline.Title = "Edited Title"

	final, err := p.Run(context.Background(), "Go testing", WithResumeFrom(NodeWrite, edited))
	require.NoError(t, err)

	assert.Empty(t, final.Error)
	// Research and plan do not run again on resume.
	assert.Equal(t, 1, research.calls)
	require.NotNil(t, final.Draft)
	assert.Equal(t, "Edited Title", final.Draft.Title)
}

func TestRunResearchFailureShortCircuits(t *testing.T) {
	research := &stubResearcher{err: errors.New("search backend down")}
	planner := &stubPlanner{}
	writer := &stubWriter{}
	seo := &stubOptimizer{}
	image := &stubArtist{}
	p := newTestPipeline(t, provider.ModelConfig{}, stubs{
		research: research, planner: planner, writer: writer, seo: seo, image: image,
	})

	state, err := p.Run(context.Background(), "Go testing")
	require.NoError(t, err)

	assert.Contains(t, state.Error, "Research failed")
	assert.Contains(t, state.Error, "search backend down")
	// Every downstream node becomes a pass-through.
	assert.Equal(t, 0, planner.calls)
	assert.Equal(t, 0, writer.writeCalls)
	assert.Equal(t, 0, seo.calls)
	assert.Equal(t, 0, image.calls)
}

func TestRunCriticFailureExitsLoop(t *testing.T) {
	writer := &stubWriter{}
	critic := &stubCritic{err: errors.New("model overloaded")}
	seo := &stubOptimizer{}
	p := newTestPipeline(t, provider.ModelConfig{}, stubs{writer: writer, critic: critic, seo: seo})

	state, err := p.Run(context.Background(), "Go testing")
	require.NoError(t, err)

	assert.Contains(t, state.Error, "Critique failed")
	// The error routes through the conditional edge to SEO, never back to the
	// writer, and SEO passes through.
	assert.Equal(t, 1, writer.writeCalls)
	assert.Equal(t, 0, writer.reviseCalls)
	assert.Equal(t, 0, seo.calls)
}

func TestRunImageFailureDoesNotFailRun(t *testing.T) {
	image := &stubArtist{err: errors.New("billing hard limit")}
	p := newTestPipeline(t, provider.ModelConfig{}, stubs{image: image})

	state, err := p.Run(context.Background(), "Go testing")
	require.NoError(t, err)

	assert.Empty(t, state.Error)
	assert.Empty(t, state.ImageURL)
	require.NotNil(t, state.SeoReview)
}

func TestRunImageSubjectPrecedence(t *testing.T) {
	// The SEO-improved title wins over the draft title and the raw topic.
	image := &stubArtist{}
	p := newTestPipeline(t, provider.ModelConfig{}, stubs{image: image})

	_, err := p.Run(context.Background(), "Go testing")
	require.NoError(t, err)
	assert.Equal(t, "Improved Planned Title", image.lastSubject)
}

func TestRunResumeValidation(t *testing.T) {
	p := newTestPipeline(t, provider.ModelConfig{}, stubs{})

	_, err := p.Run(context.Background(), "", WithResumeFrom(NodeWrite, State{}))
	var missing *MissingStateError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, NodeWrite, missing.Node)
	assert.Contains(t, missing.Missing, "researchData")
	assert.Contains(t, missing.Missing, "outline")

	_, err = p.Run(context.Background(), "", WithResumeFrom("nonsense", State{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown resume node")
}

func TestRunResumeClearsError(t *testing.T) {
	stale := State{
		Topic:        "Go testing",
		ResearchData: &agents.ResearchData{KeyFacts: []string{"f"}, Context: "c"},
		Outline:      &agents.Outline{Title: "T", Sections: []agents.OutlineSection{{Title: "S"}}},
		Error:        "Writing failed: previous attempt",
	}
	p := newTestPipeline(t, provider.ModelConfig{}, stubs{})

	final, err := p.Run(context.Background(), "Go testing", WithResumeFrom(NodeWrite, stale))
	require.NoError(t, err)
	assert.Empty(t, final.Error)
	require.NotNil(t, final.Draft)
}

func TestRunEmitsStatuses(t *testing.T) {
	var statuses []string
	cfg := provider.ModelConfig{
		OnStep: func(ctx context.Context, status string) error {
			statuses = append(statuses, status)
			return nil
		},
	}
	p := newTestPipeline(t, cfg, stubs{critic: &stubCritic{scores: []float64{9}}})

	_, err := p.Run(context.Background(), "Go testing")
	require.NoError(t, err)

	// Phase labels from the nodes themselves.
	assert.Contains(t, statuses, StatusResearching)
	assert.Contains(t, statuses, StatusWriting)
	assert.Contains(t, statuses, StatusOptimizing)
	// Uppercase node names from the step notifier.
	assert.Contains(t, statuses, "RESEARCH")
	assert.Contains(t, statuses, "PLAN")
	assert.Contains(t, statuses, "WRITE")
	assert.Contains(t, statuses, "CRITIC")
	assert.Contains(t, statuses, "SEO")
	assert.Contains(t, statuses, "IMAGE")
}

func TestRunStatusCallbackFailureIsAdvisory(t *testing.T) {
	cfg := provider.ModelConfig{
		OnStep: func(ctx context.Context, status string) error {
			return errors.New("host webhook down")
		},
	}
	p := newTestPipeline(t, cfg, stubs{})

	state, err := p.Run(context.Background(), "Go testing")
	require.NoError(t, err)
	assert.Empty(t, state.Error)
}

func TestMermaid(t *testing.T) {
	p := newTestPipeline(t, provider.ModelConfig{}, stubs{})
	out := p.Mermaid()
	assert.Contains(t, out, "START --> research")
	assert.Contains(t, out, "research --> plan")
	assert.Contains(t, out, `critic_cond{"?"}`)
}

func TestNewRejectsUnsupportedProvider(t *testing.T) {
	_, err := New(provider.ModelConfig{Provider: "mystery"})
	var unsupported *provider.UnsupportedProviderError
	assert.ErrorAs(t, err, &unsupported)
}
