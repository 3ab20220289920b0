package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONPlain(t *testing.T) {
	out, err := ExtractJSON(`{"a": 1}`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, out)
}

func TestExtractJSONFenced(t *testing.T) {
	raw := "Here is the analysis:\n```json\n{\"a\": 1}\n```\nLet me know."
	out, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, out)
}

func TestExtractJSONArray(t *testing.T) {
	out, err := ExtractJSON("result: [1, 2, 3] done")
	require.NoError(t, err)
	assert.Equal(t, "[1, 2, 3]", out)
}

func TestExtractJSONSurroundingProse(t *testing.T) {
	out, err := ExtractJSON(`The answer is {"nested": {"b": 2}} as requested.`)
	require.NoError(t, err)
	assert.Equal(t, `{"nested": {"b": 2}}`, out)
}

func TestExtractJSONNone(t *testing.T) {
	_, err := ExtractJSON("I could not produce any structured output.")
	assert.Error(t, err)
}

func TestParseJSONResponse(t *testing.T) {
	var out struct {
		Score float64 `json:"score"`
	}
	require.NoError(t, ParseJSONResponse("```json\n{\"score\": 2.5}\n```", &out))
	assert.Equal(t, 2.5, out.Score)

	assert.Error(t, ParseJSONResponse("{not json}", &out))
}
