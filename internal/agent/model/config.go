package model

// ================ Config ================

// ConversationConfig controls history storage and the history windows handed
// to the analysis prompts.
type ConversationConfig struct {
	TTL                 string `envconfig:"CONVERSATION_TTL" default:"15m"`
	ClassifyMaxEntries  int    `envconfig:"CONVERSATION_CLASSIFY_MAX_ENTRIES" default:"6"`
	SentimentMaxEntries int    `envconfig:"CONVERSATION_SENTIMENT_MAX_ENTRIES" default:"4"`
}

// AnalysisModelConfig configures the low-temperature model used for
// classification, sentiment, eligibility, refund and escalation judgments.
type AnalysisModelConfig struct {
	Model          string  `envconfig:"ANALYSIS_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens      int     `envconfig:"ANALYSIS_MAX_TOKENS" default:"2000"`
	Temperature    float32 `envconfig:"ANALYSIS_TEMPERATURE" default:"0.1"`
	TimeoutSeconds int     `envconfig:"ANALYSIS_TIMEOUT_SECONDS" default:"30"`
}

// ResponseModelConfig configures the model that drafts customer-facing
// responses. Higher temperature so replies read naturally.
type ResponseModelConfig struct {
	Model          string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens      int     `envconfig:"RESPONSE_MAX_TOKENS" default:"2000"`
	Temperature    float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.7"`
	TimeoutSeconds int     `envconfig:"RESPONSE_TIMEOUT_SECONDS" default:"30"`
}

// PolicyConfig holds per-store tunable policy constants. These thresholds are
// product decisions rather than derived values; keeping them in config lets a
// store tune routing and escalation without touching the state machine.
type PolicyConfig struct {
	AutoRefundLimit  float64 `envconfig:"AUTO_REFUND_LIMIT" default:"50"`
	ReturnWindowDays int     `envconfig:"RETURN_WINDOW_DAYS" default:"30"`

	// Router thresholds.
	RouteMinConfidence       float64 `envconfig:"ROUTE_MIN_CONFIDENCE" default:"0.5"`
	RouteFrustratedIntensity float64 `envconfig:"ROUTE_FRUSTRATED_INTENSITY" default:"4"`

	// Escalation-check thresholds.
	EscalateFrustratedIntensity float64 `envconfig:"ESCALATE_FRUSTRATED_INTENSITY" default:"5"`
	EscalateMinConfidence       float64 `envconfig:"ESCALATE_MIN_CONFIDENCE" default:"0.4"`
	HighValueOrderThreshold     float64 `envconfig:"HIGH_VALUE_ORDER_THRESHOLD" default:"200"`

	// Knowledge retrieval.
	KBRetrievalTopK       int     `envconfig:"KB_RETRIEVAL_TOP_K" default:"5"`
	KBSimilarityThreshold float64 `envconfig:"KB_SIMILARITY_THRESHOLD" default:"0.3"`
}
