package integrations

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	errx "github.com/shopmate-ai/server/internal/core/error"
	logx "github.com/shopmate-ai/server/pkg/logger"
)

// GorgiasSink forwards escalations to a Gorgias-style helpdesk as tickets.
// Notify is fire-and-forget: failures are logged and swallowed so an
// unreachable helpdesk never breaks a customer turn.
type GorgiasSink struct {
	http *resty.Client
}

// NewGorgiasSink builds an escalation sink for the given helpdesk domain.
func NewGorgiasSink(domain, email, apiKey string, timeout time.Duration) *GorgiasSink {
	rc := resty.New().
		SetBaseURL("https://" + domain + "/api").
		SetBasicAuth(email, apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &GorgiasSink{http: rc}
}

// Notify creates a helpdesk ticket for the escalated conversation.
func (s *GorgiasSink) Notify(ctx context.Context, conversationID, reason, priority, agentContext string) {
	body := map[string]any{
		"external_id": uuid.NewString(),
		"subject":     "Escalated conversation " + conversationID,
		"priority":    priority,
		"tags":        []map[string]string{{"name": "ai-escalation"}},
		"meta": map[string]string{
			"conversation_id": conversationID,
			"reason":          reason,
			"agent_context":   agentContext,
		},
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/tickets")
	if e := errx.WrapHTTP(err, statusOf(resp), "helpdesk"); e != nil {
		logx.Error().Err(e).
			Str("conversation_id", conversationID).
			Str("priority", priority).
			Msg("helpdesk notification failed")
		return
	}

	logx.Info().
		Str("conversation_id", conversationID).
		Str("priority", priority).
		Msg("escalation ticket created")
}

var _ EscalationSink = (*GorgiasSink)(nil)
