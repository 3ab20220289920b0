package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()
	assert.Equal(t, "aletheia", root.Use)

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, strings.Fields(cmd.Use)[0])
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "analyze")
	assert.Contains(t, names, "chat")
	assert.Contains(t, names, "version")
}

func TestValidateDirective(t *testing.T) {
	assert.Error(t, validateDirective(""))
	assert.Error(t, validateDirective("   "))
	assert.Error(t, validateDirective("tiny"))
	assert.Error(t, validateDirective(strings.Repeat("x", 501)))
	assert.Error(t, validateDirective(42))
	assert.NoError(t, validateDirective("assess semiconductor supply chain risk"))
}
