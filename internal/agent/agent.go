// Package agent defines the trading-agent catalog: the cross product of
// configured models and trading styles. The catalog is built once at
// startup and passed around by value; nothing mutates it afterwards.
package agent

import (
	"fmt"

	"github.com/quantarena/agent-league/internal/config"
)

// Agent is one model × style pairing. ID is zero until the catalog is
// synced with storage.
type Agent struct {
	ID           uint
	ModelName    string
	StyleName    string
	SystemPrompt string
	CostTier     string
	Description  string
}

// BuildCatalog generates every model × style combination in a stable order.
func BuildCatalog(models []config.ModelConfig) []Agent {
	agents := make([]Agent, 0, len(models)*len(styleOrder))
	for _, m := range models {
		for _, styleName := range styleOrder {
			style := styles[styleName]
			agents = append(agents, Agent{
				ModelName:    m.Name,
				StyleName:    styleName,
				SystemPrompt: style.prompt,
				CostTier:     m.CostTier,
				Description:  fmt.Sprintf("%s (%s)", style.description, m.Name),
			})
		}
	}
	return agents
}

// StyleNames returns the configured style names in catalog order.
func StyleNames() []string {
	out := make([]string, len(styleOrder))
	copy(out, styleOrder)
	return out
}

// StylePrompt returns the system prompt for a style.
func StylePrompt(styleName string) (string, error) {
	s, ok := styles[styleName]
	if !ok {
		return "", fmt.Errorf("unknown style: %s", styleName)
	}
	return s.prompt, nil
}
