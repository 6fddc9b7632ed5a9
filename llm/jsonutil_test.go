package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "fenced json block",
			content: "Here is the change:\n```json\n{\"reasoning\": \"add cache\"}\n```\nDone.",
			want:    `{"reasoning": "add cache"}`,
		},
		{
			name:    "fenced block without language tag",
			content: "```\n{\"a\": 1}\n```",
			want:    `{"a": 1}`,
		},
		{
			name:    "bare object with surrounding prose",
			content: "Sure! {\"a\": 1} hope that helps",
			want:    `{"a": 1}`,
		},
		{
			name:    "no json at all",
			content: "I cannot do that.",
			want:    "",
		},
		{
			name:    "empty input",
			content: "",
			want:    "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractJSON(tc.content))
		})
	}
}

func TestExtractJSONCleansLLMArtifacts(t *testing.T) {
	content := "```json\n" +
		"{\n" +
		"  \"reasoning\": \"see https://example.com//path\", // explanation\n" +
		"  \"operations\": [\n" +
		"    {\"type\": \"remove-node\", \"node_id\": \"cache\"},\n" +
		"  ],\n" +
		"}\n" +
		"```"

	raw := ExtractJSON(content)
	require.NotEmpty(t, raw)

	var payload struct {
		Reasoning  string `json:"reasoning"`
		Operations []struct {
			Type   string `json:"type"`
			NodeID string `json:"node_id"`
		} `json:"operations"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &payload), "cleaned JSON must parse: %s", raw)
	assert.Equal(t, "see https://example.com//path", payload.Reasoning, "// inside a string must survive")
	require.Len(t, payload.Operations, 1)
	assert.Equal(t, "remove-node", payload.Operations[0].Type)
}

func TestStripLineComment(t *testing.T) {
	assert.Equal(t, `  "a": 1,`, stripLineComment(`  "a": 1, // count`))
	assert.Equal(t, `  "url": "http://x//y",`, stripLineComment(`  "url": "http://x//y",`))
	assert.Equal(t, `plain line`, stripLineComment(`plain line`))
}
