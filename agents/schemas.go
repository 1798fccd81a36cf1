package agents

import "fmt"

// Output schemas shared by the agents. JSON tags follow the field names the
// host persists, so serialized state round-trips between runs unchanged.

// TopicSuggestion is one candidate blog topic produced by topic discovery.
type TopicSuggestion struct {
	Topic        string   `json:"topic"`
	Description  string   `json:"description"`
	Keywords     []string `json:"keywords"`
	SearchVolume string   `json:"searchVolume,omitempty"`
	// Relevance is a score from 1 to 10.
	Relevance float64 `json:"relevance"`
}

// TopicSuggestions is the topic-discovery output.
type TopicSuggestions struct {
	Topics []TopicSuggestion `json:"topics"`
}

// Validate implements provider.Validatable.
func (t TopicSuggestions) Validate() error {
	if len(t.Topics) == 0 {
		return fmt.Errorf("topics must not be empty")
	}
	for i, topic := range t.Topics {
		if topic.Topic == "" {
			return fmt.Errorf("topics[%d]: topic must not be empty", i)
		}
		if topic.Relevance < 1 || topic.Relevance > 10 {
			return fmt.Errorf("topics[%d]: relevance %v out of range 1-10", i, topic.Relevance)
		}
	}
	return nil
}

// ResearchData holds deep-research findings for one topic.
type ResearchData struct {
	Topic    string   `json:"topic"`
	KeyFacts []string `json:"keyFacts"`
	// Context is background information and current trends related to the topic.
	Context string `json:"context"`
	// SuggestedStructure lists section titles or themes to cover.
	SuggestedStructure []string `json:"suggestedStructure"`
	Sources            []string `json:"sources,omitempty"`
}

// Validate implements provider.Validatable.
func (r ResearchData) Validate() error {
	if len(r.KeyFacts) == 0 {
		return fmt.Errorf("keyFacts must not be empty")
	}
	if r.Context == "" {
		return fmt.Errorf("context must not be empty")
	}
	return nil
}

// OutlineSection is one planned section of the article.
type OutlineSection struct {
	Title              string   `json:"title"`
	KeyPoints          []string `json:"keyPoints"`
	EstimatedWordCount int      `json:"estimatedWordCount"`
}

// Outline is the structured article plan produced by the planner and
// optionally edited by a human before writing begins.
type Outline struct {
	Title                   string           `json:"title"`
	Slug                    string           `json:"slug"`
	Description             string           `json:"description"`
	TargetAudience          string           `json:"targetAudience"`
	Sections                []OutlineSection `json:"sections"`
	TotalEstimatedWordCount int              `json:"totalEstimatedWordCount"`
}

// Validate implements provider.Validatable.
func (o Outline) Validate() error {
	if o.Title == "" {
		return fmt.Errorf("title must not be empty")
	}
	if len(o.Sections) == 0 {
		return fmt.Errorf("sections must not be empty")
	}
	for i, s := range o.Sections {
		if s.Title == "" {
			return fmt.Errorf("sections[%d]: title must not be empty", i)
		}
	}
	return nil
}

// ArticleDraft is the written article plus its metadata.
type ArticleDraft struct {
	Title string `json:"title"`
	// Content is markdown.
	Content         string `json:"content"`
	Excerpt         string `json:"excerpt"`
	MetaDescription string `json:"metaDescription"`
	// ReadingTime is in minutes.
	ReadingTime int `json:"readingTime"`
}

// Validate implements provider.Validatable.
func (d ArticleDraft) Validate() error {
	if d.Title == "" {
		return fmt.Errorf("title must not be empty")
	}
	if d.Content == "" {
		return fmt.Errorf("content must not be empty")
	}
	return nil
}

// CriticReview is the critic's quality assessment of a draft.
type CriticReview struct {
	// Score is a quality score from 1 to 10.
	Score float64 `json:"score"`
	// Critique lists potential issues or areas for improvement.
	Critique []string `json:"critique"`
	// OverallAnalysis is general feedback on tone, style and accuracy.
	OverallAnalysis string `json:"overallAnalysis"`
}

// Validate implements provider.Validatable.
func (c CriticReview) Validate() error {
	if c.Score < 1 || c.Score > 10 {
		return fmt.Errorf("score %v out of range 1-10", c.Score)
	}
	return nil
}

// SeoReview holds optimization suggestions for a draft.
type SeoReview struct {
	// Score is from 0 to 100.
	Score           float64  `json:"score"`
	Feedback        []string `json:"feedback"`
	ImprovedTitle   string   `json:"improvedTitle,omitempty"`
	ImprovedExcerpt string   `json:"improvedExcerpt,omitempty"`
	KeywordsUsed    []string `json:"keywordsUsed"`
}

// Validate implements provider.Validatable.
func (s SeoReview) Validate() error {
	if s.Score < 0 || s.Score > 100 {
		return fmt.Errorf("score %v out of range 0-100", s.Score)
	}
	return nil
}
