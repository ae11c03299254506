package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/backend/internal/domain"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{
			name:   "fenced json block",
			input:  "Here you go:\n```json\n{\"foods\": []}\n```\nEnjoy!",
			want:   `{"foods": []}`,
			wantOK: true,
		},
		{
			name:   "fence without language tag",
			input:  "```\n{\"a\": 1}\n```",
			want:   `{"a": 1}`,
			wantOK: true,
		},
		{
			name:   "uppercase fence tag",
			input:  "```JSON\n{\"a\": 1}```",
			want:   `{"a": 1}`,
			wantOK: true,
		},
		{
			name:   "bare object surrounded by prose",
			input:  `Sure! {"calories": 500, "note": "has } in string"} Hope that helps.`,
			want:   `{"calories": 500, "note": "has } in string"}`,
			wantOK: true,
		},
		{
			name:   "invalid fence falls back to brace scan",
			input:  "```json\nnot json\n```\n{\"b\": 2}",
			want:   `{"b": 2}`,
			wantOK: true,
		},
		{
			name:   "unbalanced prefix skipped",
			input:  `{ broken {"c": 3}`,
			want:   `{"c": 3}`,
			wantOK: true,
		},
		{
			name:   "nested object",
			input:  `result: {"foods": [{"name": "rice"}]}`,
			want:   `{"foods": [{"name": "rice"}]}`,
			wantOK: true,
		},
		{
			name:  "plain prose",
			input: "I cannot analyze this meal.",
		},
		{
			name:  "empty",
			input: "   ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONExtractor_Decode(t *testing.T) {
	var out map[string]any
	err := JSONExtractor{}.Decode("```json\n{\"calories\": 420}\n```", &out)

	require.NoError(t, err)
	assert.Equal(t, float64(420), out["calories"])
}

func TestJSONExtractor_DecodeUnparsable(t *testing.T) {
	var out map[string]any
	err := JSONExtractor{}.Decode("no json here", &out)

	assert.ErrorIs(t, err, domain.ErrUnparsableOutput)
	assert.Nil(t, out)
}

func TestJSONExtractor_DecodeTypeMismatch(t *testing.T) {
	var out identifyOutput
	err := JSONExtractor{}.Decode(`{"foods": "rice"}`, &out)

	assert.ErrorIs(t, err, domain.ErrUnparsableOutput)
}
