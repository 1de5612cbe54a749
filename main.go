package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/shopmate-ai/server/internal/agent/conversations"
	"github.com/shopmate-ai/server/internal/agent/llm"
	"github.com/shopmate-ai/server/internal/agent/model"
	"github.com/shopmate-ai/server/internal/agent/repo"
	"github.com/shopmate-ai/server/internal/agent/workflow"
	"github.com/shopmate-ai/server/internal/core"
	"github.com/shopmate-ai/server/internal/integrations"
	logx "github.com/shopmate-ai/server/pkg/logger"
	pkgredis "github.com/shopmate-ai/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the support agent,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Commerce store
	ShopDomain  string `envconfig:"SHOPIFY_SHOP_DOMAIN"`
	AccessToken string `envconfig:"SHOPIFY_ACCESS_TOKEN"`

	// Optional collaborators
	EasyPostAPIKey   string `envconfig:"EASYPOST_API_KEY"`
	RetrievalBaseURL string `envconfig:"RETRIEVAL_BASE_URL"`
	GorgiasDomain    string `envconfig:"GORGIAS_DOMAIN"`
	GorgiasEmail     string `envconfig:"GORGIAS_EMAIL"`
	GorgiasAPIKey    string `envconfig:"GORGIAS_API_KEY"`

	IntegrationTimeoutSeconds int `envconfig:"INTEGRATION_TIMEOUT_SECONDS" default:"10"`

	// Agent configs
	Analysis     model.AnalysisModelConfig
	Response     model.ResponseModelConfig
	Policy       model.PolicyConfig
	Conversation model.ConversationConfig
}

func main() {
	ctx := context.Background()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment)})

	rdb, err := envCfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	ttl, err := time.ParseDuration(envCfg.Conversation.TTL)
	if err != nil {
		log.Fatalf("Invalid CONVERSATION_TTL '%s': %v", envCfg.Conversation.TTL, err)
	}

	models, err := llm.NewGeminiModels(ctx, llm.GeminiConfig{
		APIKey:   envCfg.APIKey,
		BaseURL:  envCfg.BaseURL,
		Analysis: envCfg.Analysis,
		Response: envCfg.Response,
	})
	if err != nil {
		log.Fatalf("Failed to initialise reasoning models: %v", err)
	}

	timeout := time.Duration(envCfg.IntegrationTimeoutSeconds) * time.Second

	deps := workflow.Dependencies{
		Models:       models,
		Policy:       envCfg.Policy,
		Conversation: envCfg.Conversation,
	}

	if envCfg.ShopDomain != "" {
		factory, err := integrations.NewClientFactory(&integrations.StaticCredentialSource{
			Credentials: integrations.StoreCredentials{
				ShopDomain:  envCfg.ShopDomain,
				AccessToken: envCfg.AccessToken,
			},
		}, timeout, 128)
		if err != nil {
			log.Fatalf("Failed to initialise commerce client factory: %v", err)
		}
		deps.Commerce = factory
		deps.Refunds = integrations.NewShopifyClient(envCfg.ShopDomain, envCfg.AccessToken, timeout)
	} else {
		// No store configured: run against seeded in-memory records.
		memory := integrations.NewInMemoryCommerce()
		deps.Commerce = integrations.StaticCommerceProvider{Client: memory}
		deps.Refunds = memory
	}
	if envCfg.EasyPostAPIKey != "" {
		deps.Shipping = integrations.NewEasyPostClient(envCfg.EasyPostAPIKey, timeout)
	}
	if envCfg.RetrievalBaseURL != "" {
		deps.Knowledge = integrations.NewRetrievalServiceClient(envCfg.RetrievalBaseURL, timeout)
	}
	if envCfg.GorgiasDomain != "" {
		deps.Escalations = integrations.NewGorgiasSink(envCfg.GorgiasDomain, envCfg.GorgiasEmail, envCfg.GorgiasAPIKey, timeout)
	}

	engine, err := workflow.NewEngine(deps)
	if err != nil {
		log.Fatalf("Failed to build workflow engine: %v", err)
	}

	manager := conversations.NewMessagesManager(repo.NewRedisConversationRepository(rdb, ttl))
	agent := workflow.NewAgent(engine, manager)

	testQueries := []struct {
		description string
		query       string
	}{
		{
			description: "Order status with an order number",
			query:       "Hi, where is my order #1234? It's been a week.",
		},
		{
			description: "Refund request over the auto-approval limit",
			query:       "I want a $150 refund for order #1234, the jacket arrived damaged.",
		},
		{
			description: "Explicit request for a human",
			query:       "This isn't working, let me talk to a real person please.",
		},
	}

	conversationID := "demo-conversation-1"
	storeID := "demo-store"

	for i, test := range testQueries {
		fmt.Printf("\nTest %d: %s\n", i+1, test.description)
		fmt.Printf("Query: %q\n", test.query)

		result := agent.Run(ctx, conversationID, storeID, test.query, nil)

		fmt.Printf("Intent: %s (confidence %.2f)\n", result.Intent, result.Confidence)
		fmt.Printf("Response: %s\n", result.Response)
		if result.RequiresEscalation {
			fmt.Printf("Escalated: %s\n", result.EscalationReason)
		}
		fmt.Println("------------------------------------------------")

		time.Sleep(500 * time.Millisecond)
	}
}
