// Package llm wraps the external reasoning service behind a small contract:
// send a prompt, receive generated text plus token usage, within a bounded
// time. Stages own the parsing and fallback of whatever comes back.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/shopmate-ai/server/internal/agent/model"
	logx "github.com/shopmate-ai/server/pkg/logger"
)

// Reply is one reasoning-service generation.
type Reply struct {
	Content     string
	TotalTokens int
}

// ReasoningService submits a prompt and returns generated text. It may fail,
// return malformed output, or exceed its latency budget; callers parse
// tolerantly and degrade per their documented fallback.
type ReasoningService interface {
	Generate(ctx context.Context, prompt string) (*Reply, error)
}

// Models holds the two reasoning handles the workflow uses: a low-temperature
// analysis model and a responder model for customer-facing drafts.
type Models struct {
	Analysis  ReasoningService
	Responder ReasoningService
}

// GeminiConfig holds everything needed to construct both models.
type GeminiConfig struct {
	APIKey   string
	BaseURL  string
	Analysis model.AnalysisModelConfig
	Response model.ResponseModelConfig
}

type geminiService struct {
	cm        *gemini.ChatModel
	modelName string
	timeout   time.Duration
}

// NewGeminiModels creates the analysis and responder models on a shared
// Gemini client. Constructed once at process start and reused across turns.
func NewGeminiModels(ctx context.Context, cfg GeminiConfig) (*Models, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	analysis, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Analysis.Model,
		Temperature: &cfg.Analysis.Temperature,
		MaxTokens:   &cfg.Analysis.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating analysis model")
		return nil, fmt.Errorf("error creating analysis model: %w", err)
	}

	responder, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Response.Model,
		Temperature: &cfg.Response.Temperature,
		MaxTokens:   &cfg.Response.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating response model")
		return nil, fmt.Errorf("error creating response model: %w", err)
	}

	return &Models{
		Analysis: &geminiService{
			cm:        analysis,
			modelName: cfg.Analysis.Model,
			timeout:   time.Duration(cfg.Analysis.TimeoutSeconds) * time.Second,
		},
		Responder: &geminiService{
			cm:        responder,
			modelName: cfg.Response.Model,
			timeout:   time.Duration(cfg.Response.TimeoutSeconds) * time.Second,
		},
	}, nil
}

func (s *geminiService) Generate(ctx context.Context, prompt string) (*Reply, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out, err := s.cm.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return nil, fmt.Errorf("generate with %s: %w", s.modelName, err)
	}
	if out == nil {
		return nil, fmt.Errorf("generate with %s: empty message", s.modelName)
	}

	reply := &Reply{Content: strings.TrimSpace(out.Content)}
	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		usage := out.ResponseMeta.Usage
		reply.TotalTokens = usage.TotalTokens

		inC, outC, totalC := model.ComputeCost(usage, model.ResolvePricing(s.modelName))
		logx.Debug().
			Str("model", s.modelName).
			Int("prompt_tokens", usage.PromptTokens).
			Int("completion_tokens", usage.CompletionTokens).
			Int("total_tokens", usage.TotalTokens).
			Float64("input_cost_usd", inC).
			Float64("output_cost_usd", outC).
			Float64("total_cost_usd", totalC).
			Msg("LLM usage")
	}
	return reply, nil
}
