package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseTextJoinsTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`[{"original":`), genai.Text(`"a"}]`)}},
		}},
	}
	text, err := ResponseText(resp)
	require.NoError(t, err)
	assert.Equal(t, `[{"original":"a"}]`, text)
}

func TestResponseTextErrors(t *testing.T) {
	_, err := ResponseText(nil)
	assert.Error(t, err)

	_, err = ResponseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	assert.Error(t, err)

	_, err = ResponseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}},
	}}})
	assert.Error(t, err)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	assert.Error(t, err)

	var nilClient *Client
	assert.False(t, nilClient.HealthCheck(context.Background()).Ready)
	assert.NoError(t, nilClient.Close())
}
