// Package workflow implements the conversation orchestration core: an
// explicit state machine that threads mutable conversation state through
// classification, sentiment, context retrieval, specialist handling, response
// assembly and escalation. Each stage returns a partial update merged into
// the running state; no stage reads a later stage's output.
package workflow

import (
	"context"
	"fmt"

	"github.com/shopmate-ai/server/internal/agent/llm"
	"github.com/shopmate-ai/server/internal/agent/model"
	"github.com/shopmate-ai/server/internal/integrations"
	logx "github.com/shopmate-ai/server/pkg/logger"
)

// node enumerates the workflow states. The topology is fixed: one conditional
// branch after context retrieval (the router), one conditional exit after the
// escalation check, and a direct-escalation shortcut for complaints.
type node string

const (
	nodeClassify         node = "classify_intent"
	nodeSentiment        node = "analyze_sentiment"
	nodeContext          node = "fetch_context"
	nodeWISMO            node = "wismo"
	nodeReturns          node = "returns"
	nodeRefunds          node = "refunds"
	nodeGeneral          node = "general"
	nodeRespond          node = "build_response"
	nodeEscalationCheck  node = "check_escalation"
	nodeEscalationHandle node = "handle_escalation"
	nodeDone             node = "done"
)

// stageFunc is one workflow stage: a transformation from the current state to
// a partial update. Stages catch their own collaborator failures and degrade
// per their documented fallback; they do not return errors.
type stageFunc func(ctx context.Context, st *model.ConversationState) *model.StateUpdate

// CommerceProvider hands out the per-store commerce client.
type CommerceProvider interface {
	Commerce(ctx context.Context, storeID string) (integrations.CommerceClient, error)
}

// Dependencies carries every collaborator handle the engine needs. All are
// constructed once at process start; the engine never creates its own.
type Dependencies struct {
	Models       *llm.Models
	Commerce     CommerceProvider
	Shipping     integrations.ShippingClient
	Refunds      integrations.RefundProcessor
	Knowledge    integrations.KnowledgeRetriever
	Escalations  integrations.EscalationSink
	Policy       model.PolicyConfig
	Conversation model.ConversationConfig
}

// Engine executes the workflow. It is immutable after construction and safe
// for concurrent use by many in-flight turns.
type Engine struct {
	deps   Dependencies
	stages map[node]stageFunc
}

// NewEngine compiles the workflow once. The returned engine is shared
// process-wide across turns.
func NewEngine(deps Dependencies) (*Engine, error) {
	if deps.Models == nil {
		return nil, fmt.Errorf("reasoning models are nil")
	}

	e := &Engine{deps: deps}
	e.stages = map[node]stageFunc{
		nodeClassify:         e.classifyIntent,
		nodeSentiment:        e.analyzeSentiment,
		nodeContext:          e.fetchContext,
		nodeWISMO:            e.handleWISMO,
		nodeReturns:          e.handleReturns,
		nodeRefunds:          e.handleRefunds,
		nodeGeneral:          e.handleGeneral,
		nodeRespond:          e.buildResponse,
		nodeEscalationCheck:  e.checkEscalation,
		nodeEscalationHandle: e.handleEscalation,
	}
	return e, nil
}

// next is the transition function. It is pure: the branch points read only
// already-merged state.
func (e *Engine) next(n node, st *model.ConversationState) node {
	switch n {
	case nodeClassify:
		return nodeSentiment
	case nodeSentiment:
		return nodeContext
	case nodeContext:
		decision := Route(st.Intent, st.Sentiment, st.SentimentIntensity, st.Confidence, e.deps.Policy)
		logRoute(st.ConversationID, st.Intent, decision)
		return specialistNode(decision)
	case nodeWISMO, nodeReturns, nodeRefunds, nodeGeneral:
		return nodeRespond
	case nodeRespond:
		return nodeEscalationCheck
	case nodeEscalationCheck:
		if st.RequiresEscalation {
			return nodeEscalationHandle
		}
		return nodeDone
	case nodeEscalationHandle:
		return nodeDone
	}
	return nodeDone
}

func specialistNode(d RouteDecision) node {
	switch d {
	case RouteWISMO:
		return nodeWISMO
	case RouteReturns:
		return nodeReturns
	case RouteRefunds:
		return nodeRefunds
	case RouteEscalation:
		return nodeEscalationHandle
	default:
		return nodeGeneral
	}
}

// Run executes one turn, merging every stage's partial update into st. The
// returned error covers only failures that escape a stage (a programmer
// invariant violation, surfaced as a panic); collaborator failures degrade
// inside the stages.
func (e *Engine) Run(ctx context.Context, st *model.ConversationState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("workflow panic: %v", r)
		}
	}()

	// Upper bound on transitions; the longest legal path is eight states.
	const maxSteps = 16

	n := nodeClassify
	for steps := 0; n != nodeDone; steps++ {
		if steps >= maxSteps {
			return fmt.Errorf("workflow exceeded %d transitions at state %q", maxSteps, n)
		}

		stage, ok := e.stages[n]
		if !ok {
			return fmt.Errorf("no stage registered for state %q", n)
		}

		st.Apply(stage(ctx, st))

		prev := n
		n = e.next(n, st)
		logx.Debug().
			Str("conversation_id", st.ConversationID).
			Str("from", string(prev)).
			Str("to", string(n)).
			Msg("workflow transition")
	}
	return nil
}
