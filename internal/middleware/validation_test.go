package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateQuery(t *testing.T) {
	assert.NoError(t, ValidateQuery("capital of France?"))
	assert.NoError(t, ValidateQuery("日本語の質問"))

	assert.Error(t, ValidateQuery(""))
	assert.Error(t, ValidateQuery(strings.Repeat("a", maxQueryLength+1)))
	assert.Error(t, ValidateQuery("bad \xff bytes"))
}

func TestValidateSystemPrompt(t *testing.T) {
	assert.NoError(t, ValidateSystemPrompt(""))
	assert.NoError(t, ValidateSystemPrompt("Answer briefly."))

	assert.Error(t, ValidateSystemPrompt(strings.Repeat("a", maxQueryLength+1)))
	assert.Error(t, ValidateSystemPrompt("bad \xff bytes"))
}
