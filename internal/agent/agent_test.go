package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantarena/agent-league/internal/config"
)

func TestBuildCatalog(t *testing.T) {
	models := []config.ModelConfig{
		{Name: "gpt-4.1", CostTier: "expensive"},
		{Name: "claude-3-haiku", CostTier: "cheap"},
	}

	catalog := BuildCatalog(models)
	require.Len(t, catalog, 2*len(StyleNames()))

	seen := make(map[string]bool)
	for _, a := range catalog {
		key := a.ModelName + "/" + a.StyleName
		assert.False(t, seen[key], "duplicate combination %s", key)
		seen[key] = true
		assert.NotEmpty(t, a.SystemPrompt)
		assert.NotEmpty(t, a.CostTier)
		assert.Zero(t, a.ID)
	}

	// Same input always yields the same ordering.
	again := BuildCatalog(models)
	assert.Equal(t, catalog, again)
}

func TestStylePrompt(t *testing.T) {
	p, err := StylePrompt("momentum")
	require.NoError(t, err)
	assert.Contains(t, p, "MOMENTUM TRADING STYLE")

	_, err = StylePrompt("yolo")
	assert.Error(t, err)
}
