package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestUnmarshalRawJSON(t *testing.T) {
	var p payload
	err := Unmarshal(`{"name": "demo", "items": ["a", "b"]}`, &p)
	require.NoError(t, err)
	assert.Equal(t, "demo", p.Name)
	assert.Equal(t, []string{"a", "b"}, p.Items)
}

func TestUnmarshalJSONFence(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"name\": \"demo\", \"items\": [\"a\"]}\n```\nHope that helps!"
	var p payload
	require.NoError(t, Unmarshal(raw, &p))
	assert.Equal(t, "demo", p.Name)
}

func TestUnmarshalGenericFence(t *testing.T) {
	raw := "```\n{\"name\": \"demo\", \"items\": [\"a\"]}\n```"
	var p payload
	require.NoError(t, Unmarshal(raw, &p))
	assert.Equal(t, "demo", p.Name)
}

func TestUnmarshalUsesFirstFence(t *testing.T) {
	raw := "```json\n{\"name\": \"first\", \"items\": [\"a\"]}\n```\nand also\n```json\n{\"name\": \"second\", \"items\": []}\n```"
	var p payload
	require.NoError(t, Unmarshal(raw, &p))
	assert.Equal(t, "first", p.Name)
}

func TestUnmarshalProseAroundObject(t *testing.T) {
	raw := `Sure! The analysis is {"name": "demo", "items": ["x"]} as requested.`
	var p payload
	require.NoError(t, Unmarshal(raw, &p))
	assert.Equal(t, "demo", p.Name)
}

func TestUnmarshalNestedBracesAndStrings(t *testing.T) {
	raw := `prefix {"name": "a {weird} \"value\"", "items": ["}"]} suffix`
	var p payload
	require.NoError(t, Unmarshal(raw, &p))
	assert.Equal(t, `a {weird} "value"`, p.Name)
	assert.Equal(t, []string{"}"}, p.Items)
}

func TestUnmarshalMalformed(t *testing.T) {
	var p payload
	assert.Error(t, Unmarshal("no json here at all", &p))
	assert.Error(t, Unmarshal(`{"name": "unterminated`, &p))
	assert.Error(t, Unmarshal("", &p))
}

func TestUnfencePayloadOnFenceLine(t *testing.T) {
	// some models put the opening brace on the fence line itself
	got := Unfence("```{\"name\": \"demo\"}\n```")
	assert.Equal(t, `{"name": "demo"}`, got)
}
