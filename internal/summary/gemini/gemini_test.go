package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("gimnasio / día de espalda", []string{"hacer bíceps", "remo con barra"})

	assert.Contains(t, prompt, "GRUPO: gimnasio / día de espalda")
	assert.Contains(t, prompt, "- hacer bíceps\n")
	assert.Contains(t, prompt, "- remo con barra\n")
	assert.Contains(t, prompt, "Párrafo:")
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil, nil)
	assert.Error(t, err)
}
