package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ttpunch/blog/agents"
)

// Node names of the content graph.
const (
	NodeResearch = "research"
	NodePlan     = "plan"
	NodeWrite    = "write"
	NodeCritic   = "critic"
	NodeSeo      = "seo"
	NodeImage    = "image"
)

// Status labels emitted through ModelConfig.OnStep while a phase is running.
// After each node completes, the uppercase node name is emitted as well, so
// hosts must map every node name in addition to these phase labels.
const (
	StatusResearching = "RESEARCHING"
	StatusWriting     = "WRITING"
	StatusOptimizing  = "OPTIMIZING"
)

// State is the single record threaded through the graph. One run owns its
// state exclusively: nodes receive it by value and return an updated copy.
//
// JSON tags match the host's persisted blob, which must round-trip across the
// pause between planning and writing. The provider config deliberately lives
// on the Pipeline, not here: it is immutable per run and never persisted.
type State struct {
	Topic        string                `json:"topic"`
	ResearchData *agents.ResearchData  `json:"researchData,omitempty"`
	Outline      *agents.Outline       `json:"outline,omitempty"`
	Draft        *agents.ArticleDraft  `json:"draft,omitempty"`
	CriticReview *agents.CriticReview  `json:"criticReview,omitempty"`
	SeoReview    *agents.SeoReview     `json:"seoReview,omitempty"`
	ImageURL     string                `json:"imageUrl"`

	// RevisionCount is incremented by the critic after every review, so a
	// run that passes the quality gate first try still finishes at 1.
	RevisionCount int `json:"revisionCount"`

	// CritiqueFeedback drives the writer's next revision; replaced on every
	// critic pass.
	CritiqueFeedback []string `json:"critiqueFeedback,omitempty"`

	// FinalArticle is a reserved terminal aggregate, unused in the minimal
	// path but kept so persisted blobs stay forward-compatible.
	FinalArticle *agents.ArticleDraft `json:"finalArticle,omitempty"`

	// Error, once non-empty, turns every remaining node into a pass-through.
	Error string `json:"error,omitempty"`
}

// EncodeState serializes the state for the host's opaque persistence blob.
func EncodeState(s State) ([]byte, error) {
	return json.Marshal(s)
}

// DecodeState restores a state from the host's persistence blob.
func DecodeState(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("decode pipeline state: %w", err)
	}
	return s, nil
}

// MissingStateError is returned by Run when a resumed run's injected state
// lacks fields the resume-target node or its successors require.
type MissingStateError struct {
	Node    string
	Missing []string
}

func (e *MissingStateError) Error() string {
	return fmt.Sprintf("cannot resume at %s: missing %s", e.Node, strings.Join(e.Missing, ", "))
}

// validateResume checks that the injected state carries everything the entry
// node and its reachable successors need.
func validateResume(node string, s State) error {
	var missing []string

	switch node {
	case NodeResearch:
		if s.Topic == "" {
			missing = append(missing, "topic")
		}
	case NodePlan:
		if s.Topic == "" {
			missing = append(missing, "topic")
		}
		if s.ResearchData == nil {
			missing = append(missing, "researchData")
		}
	case NodeWrite:
		if s.ResearchData == nil {
			missing = append(missing, "researchData")
		}
		if s.Outline == nil {
			missing = append(missing, "outline")
		}
	case NodeCritic, NodeSeo, NodeImage:
		if s.Draft == nil {
			missing = append(missing, "draft")
		}
	default:
		return fmt.Errorf("unknown resume node: %s", node)
	}

	if len(missing) > 0 {
		return &MissingStateError{Node: node, Missing: missing}
	}
	return nil
}
