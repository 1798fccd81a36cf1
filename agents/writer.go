package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ttpunch/blog/provider"
)

const (
	writerSystemPrompt = "You are a professional blog writer. Write a high-quality, engaging article based on the provided outline. Use Markdown formatting. Use H2 and H3 for headers. Keep paragraphs concise."

	reviserSystemPrompt = "You are an expert technical editor. Rewrite the following blog post to address the specific critique provided. Improve the quality, flow, and accuracy while maintaining the core message. Return the full revised article."
)

// WriterAgent writes the initial draft from an outline and revises drafts
// against critique feedback. Each call is an independent transformation.
type WriterAgent struct {
	model *provider.Structured[ArticleDraft]
}

// NewWriterAgent builds the writer's model from the config.
func NewWriterAgent(cfg provider.ModelConfig) (*WriterAgent, error) {
	model, err := provider.NewStructured[ArticleDraft](cfg)
	if err != nil {
		return nil, err
	}
	return &WriterAgent{model: model}, nil
}

// WriteDraft writes the full article from the outline and research context.
func (a *WriterAgent) WriteDraft(ctx context.Context, outline Outline, research ResearchData) (ArticleDraft, error) {
	input := struct {
		Outline
		ResearchContext ResearchData `json:"researchContext"`
	}{Outline: outline, ResearchContext: research}

	encoded, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return ArticleDraft{}, err
	}

	user := fmt.Sprintf("Outline: %s\n\nWrite the full article.", encoded)
	draft, err := a.model.Generate(ctx, writerSystemPrompt, user)
	if err != nil {
		return ArticleDraft{}, err
	}
	return finishDraft(draft), nil
}

// ReviseDraft rewrites an existing draft to address the critique feedback.
func (a *WriterAgent) ReviseDraft(ctx context.Context, current ArticleDraft, feedback []string) (ArticleDraft, error) {
	currentJSON, err := json.Marshal(current)
	if err != nil {
		return ArticleDraft{}, err
	}
	feedbackJSON, err := json.Marshal(feedback)
	if err != nil {
		return ArticleDraft{}, err
	}

	user := fmt.Sprintf("Original Draft: %s\n\nCritique Feedback: %s\n\nRewrite the article.", currentJSON, feedbackJSON)
	draft, err := a.model.Generate(ctx, reviserSystemPrompt, user)
	if err != nil {
		return ArticleDraft{}, err
	}
	return finishDraft(draft), nil
}

// finishDraft normalizes model output: excerpt and meta description are
// sanitized of any HTML, and a missing reading time is derived from the
// markdown content.
func finishDraft(draft ArticleDraft) ArticleDraft {
	draft.Excerpt = SanitizeText(draft.Excerpt)
	draft.MetaDescription = SanitizeText(draft.MetaDescription)
	if draft.ReadingTime <= 0 {
		draft.ReadingTime = ReadingTime(draft.Content)
	}
	return draft
}
