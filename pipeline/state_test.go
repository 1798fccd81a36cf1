package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttpunch/blog/agents"
)

func TestEncodeDecodeStateRoundTrip(t *testing.T) {
	original := State{
		Topic: "Go testing",
		ResearchData: &agents.ResearchData{
			Topic: "Go testing", KeyFacts: []string{"f"}, Context: "c",
		},
		Outline: &agents.Outline{
			Title: "T", Sections: []agents.OutlineSection{{Title: "S"}},
		},
		RevisionCount:    2,
		CritiqueFeedback: []string{"more examples"},
		ImageURL:         "",
	}

	blob, err := EncodeState(original)
	require.NoError(t, err)

	restored, err := DecodeState(blob)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestStateJSONFieldNames(t *testing.T) {
	blob, err := EncodeState(State{Topic: "t", RevisionCount: 1})
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(blob, &raw))

	// Field names the host's persisted blobs rely on.
	assert.Contains(t, raw, "topic")
	assert.Contains(t, raw, "revisionCount")
	assert.Contains(t, raw, "imageUrl")
	assert.NotContains(t, raw, "error")
}

func TestDecodeStateInvalid(t *testing.T) {
	_, err := DecodeState([]byte("{not json"))
	assert.Error(t, err)
}

func TestValidateResume(t *testing.T) {
	research := &agents.ResearchData{KeyFacts: []string{"f"}, Context: "c"}
	outline := &agents.Outline{Title: "T", Sections: []agents.OutlineSection{{Title: "S"}}}
	draft := &agents.ArticleDraft{Title: "T", Content: "body"}

	cases := []struct {
		name    string
		node    string
		state   State
		wantErr bool
	}{
		{"research with topic", NodeResearch, State{Topic: "t"}, false},
		{"research without topic", NodeResearch, State{}, true},
		{"plan complete", NodePlan, State{Topic: "t", ResearchData: research}, false},
		{"plan missing research", NodePlan, State{Topic: "t"}, true},
		{"write complete", NodeWrite, State{ResearchData: research, Outline: outline}, false},
		{"write missing outline", NodeWrite, State{ResearchData: research}, true},
		{"critic with draft", NodeCritic, State{Draft: draft}, false},
		{"seo without draft", NodeSeo, State{}, true},
		{"image with draft", NodeImage, State{Draft: draft}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateResume(tc.node, tc.state)
			if tc.wantErr {
				var missing *MissingStateError
				assert.ErrorAs(t, err, &missing)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
