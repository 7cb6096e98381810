package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/quantarena/agent-league/internal/config"
	"github.com/quantarena/agent-league/internal/logger"
)

// Short model names accepted in config, mapped to dated API identifiers.
var modelAliases = map[string]string{
	"claude-3-5-sonnet": "claude-3-5-sonnet-20241022",
	"claude-3-haiku":    "claude-3-haiku-20240307",
}

// Orchestrator routes decision requests to the provider matching the
// agent's model name and fans batches out concurrently.
type Orchestrator struct {
	providers map[string]Provider // vendor key -> adapter
	timeout   time.Duration
	logger    *logger.Logger
}

func NewOrchestrator(providers map[string]Provider, timeout time.Duration, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		providers: providers,
		timeout:   timeout,
		logger:    log,
	}
}

// ProvidersFromConfig builds the vendor adapters for every configured key.
func ProvidersFromConfig(cfg *config.Config) map[string]Provider {
	providers := make(map[string]Provider)
	if cfg.Providers.OpenAI.APIKey != "" {
		providers["openai"] = NewOpenAIProvider(cfg.Providers.OpenAI.APIKey)
	}
	if cfg.Providers.Anthropic.APIKey != "" {
		providers["anthropic"] = NewAnthropicProvider(cfg.Providers.Anthropic.APIKey)
	}
	if cfg.Providers.DeepSeek.APIKey != "" {
		providers["deepseek"] = NewDeepSeekProvider(cfg.Providers.DeepSeek.APIKey)
	}
	return providers
}

// route maps a model name prefix to a vendor adapter and resolves aliases.
func (o *Orchestrator) route(modelName string) (Provider, string, error) {
	var vendor string
	switch {
	case strings.HasPrefix(modelName, "gpt-"):
		vendor = "openai"
	case strings.HasPrefix(modelName, "claude-"):
		vendor = "anthropic"
	case strings.HasPrefix(modelName, "deepseek-"):
		vendor = "deepseek"
	default:
		return nil, "", fmt.Errorf("unknown model: %s", modelName)
	}

	provider, ok := o.providers[vendor]
	if !ok {
		return nil, "", fmt.Errorf("no %s provider configured for model %s", vendor, modelName)
	}

	model := modelName
	if full, ok := modelAliases[modelName]; ok {
		model = full
	}
	return provider, model, nil
}

// Decide asks one agent's model for a decision. Configuration errors
// (unknown model) are returned as errors; malformed responses degrade to a
// hold decision inside ParseDecision.
func (o *Orchestrator) Decide(ctx context.Context, req DecisionRequest) (Decision, error) {
	provider, model, err := o.route(req.ModelName)
	if err != nil {
		return Decision{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	userPrompt := BuildUserPrompt(req.MarketData, req.AccountState)

	o.logger.Debug("requesting decision", "agent_id", req.AgentID, "model", model)
	raw, err := provider.Complete(ctx, model, req.SystemPrompt, userPrompt)
	if err != nil {
		return Decision{}, fmt.Errorf("model %s: %w", model, err)
	}

	return ParseDecision(raw), nil
}

// DecideBatch dispatches one decision call per request concurrently and
// always returns exactly one decision per input, keyed by agent ID. A
// provider failure or timeout for one agent becomes that agent's hold
// fallback; it never aborts the batch, and batch latency is bounded by the
// slowest call.
func (o *Orchestrator) DecideBatch(ctx context.Context, reqs []DecisionRequest) map[uint]Decision {
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	decisions := make(map[uint]Decision, len(reqs))

	for _, req := range reqs {
		wg.Add(1)
		go func(r DecisionRequest) {
			defer wg.Done()

			d, err := o.Decide(ctx, r)
			if err != nil {
				o.logger.Warn("decision failed, holding",
					"agent_id", r.AgentID, "model", r.ModelName, "error", err)
				d = Decision{
					Action:     ActionHold,
					Confidence: 0,
					Reasoning:  fmt.Sprintf("provider error: %v", err),
				}
			}

			mu.Lock()
			decisions[r.AgentID] = d
			mu.Unlock()
		}(req)
	}

	wg.Wait()
	return decisions
}
