package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		`{"a":1}`:                 `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, StripFences(in))
	}
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(errors.New("429 Too Many Requests")))
	assert.True(t, IsRateLimited(errors.New("googleapi: RESOURCE_EXHAUSTED")))
	assert.True(t, IsRateLimited(errors.New("quota exceeded for model")))
	assert.True(t, IsRateLimited(errors.New("rate limit hit")))
	assert.False(t, IsRateLimited(errors.New("connection refused")))
	assert.False(t, IsRateLimited(nil))
}
