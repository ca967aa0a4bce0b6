package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func textResponse(text string, finish genai.FinishReason) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: finish,
			Content: &genai.Content{
				Parts: []*genai.Part{{Text: text}},
			},
		}},
	}
}

func TestClassify_Success(t *testing.T) {
	text, err := classify(textResponse("Halo! The book costs Rp 80000.", genai.FinishReasonStop))
	require.NoError(t, err)
	assert.Equal(t, "Halo! The book costs Rp 80000.", text)
}

func TestClassify_Blocked(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{
			BlockReason: genai.BlockedReasonSafety,
		},
	}

	_, err := classify(resp)
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestClassify_StoppedForSafety(t *testing.T) {
	_, err := classify(textResponse("partial", genai.FinishReasonSafety))
	assert.ErrorIs(t, err, ErrStopped)
}

func TestClassify_StoppedForRecitation(t *testing.T) {
	_, err := classify(textResponse("partial", genai.FinishReasonRecitation))
	assert.ErrorIs(t, err, ErrStopped)
}

func TestClassify_NoCandidates(t *testing.T) {
	_, err := classify(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClassify_EmptyText(t *testing.T) {
	_, err := classify(textResponse("", genai.FinishReasonStop))
	assert.ErrorIs(t, err, ErrTransport)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(t.Context(), Options{Model: "gemini-1.5-flash"}, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}
