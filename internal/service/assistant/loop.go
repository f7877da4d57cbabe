package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/hearthside/hearthside-ai/internal/service/search"
)

// maxToolRounds bounds how many tool-dispatch rounds one turn may run.
const maxToolRounds = 3

// errUnparseableResponse marks a model response whose tool calls could not be
// decoded. The loop stops on it; the fallback synthesizer answers the turn.
var errUnparseableResponse = errors.New("unparseable tool-call response")

// loopOutcome is what the orchestration loop hands to the finalizer.
type loopOutcome struct {
	text         string
	invocations  []ToolInvocation
	resources    []search.Resource
	optimization *search.Optimization
}

// toolRequest is one decoded tool call.
type toolRequest struct {
	id   string
	name string
	args json.RawMessage
}

// runLoop drives the tool-calling model through at most maxToolRounds
// dispatch rounds. Provider errors and unparseable responses end the loop
// with whatever was accumulated; they never fail the turn.
func (s *Service) runLoop(ctx context.Context, messages []*schema.Message, profile *ProjectProfile) *loopOutcome {
	outcome := &loopOutcome{}

	if s.toolModel == nil {
		if s.chatModel == nil {
			return outcome
		}
		resp, err := s.chatModel.Generate(ctx, messages)
		if err != nil {
			log.Printf("Warning: chat generation failed: %v", err)
			return outcome
		}
		outcome.text = resp.Content
		return outcome
	}

	for round := 0; round < maxToolRounds; round++ {
		resp, err := s.toolModel.Generate(ctx, messages)
		if err != nil {
			log.Printf("Warning: chat generation failed in round %d: %v", round+1, err)
			return outcome
		}

		requests, err := extractToolRequests(resp)
		if err != nil {
			log.Printf("Warning: round %d: %v", round+1, err)
			return outcome
		}
		if len(requests) == 0 {
			outcome.text = resp.Content
			return outcome
		}

		messages = append(messages, resp)
		for _, req := range requests {
			cap, ok := ParseCapability(req.name)
			if !ok {
				// outside the closed capability set: never dispatched,
				// never counted as an invocation
				log.Printf("Warning: model requested unknown tool %q", req.name)
				messages = append(messages, schema.ToolMessage(`{"success":false,"error":"unknown tool"}`, req.id))
				continue
			}

			result := s.dispatcher.Dispatch(ctx, cap, req.args, profile)
			outcome.invocations = append(outcome.invocations, ToolInvocation{
				Capability: cap,
				Arguments:  req.args,
				Result:     result,
			})
			outcome.resources = append(outcome.resources, result.Resources...)
			if outcome.optimization == nil && result.Optimization != nil {
				outcome.optimization = result.Optimization
			}

			resultJSON, err := json.Marshal(result)
			if err != nil {
				resultJSON = []byte(`{"success":false,"error":"result serialization failed"}`)
			}
			messages = append(messages, schema.ToolMessage(string(resultJSON), req.id))
		}
	}

	// rounds exhausted; ask for a closing answer without dispatching further
	resp, err := s.toolModel.Generate(ctx, messages)
	if err != nil {
		log.Printf("Warning: closing generation failed: %v", err)
		return outcome
	}
	outcome.text = resp.Content
	return outcome
}

// extractToolRequests decodes the tool calls of a model response. A call with
// a blank name or non-JSON arguments makes the whole response unparseable;
// partial dispatch of a malformed response is worse than no dispatch.
func extractToolRequests(resp *schema.Message) ([]toolRequest, error) {
	if len(resp.ToolCalls) == 0 {
		return nil, nil
	}

	requests := make([]toolRequest, 0, len(resp.ToolCalls))
	for _, tc := range resp.ToolCalls {
		name := strings.TrimSpace(tc.Function.Name)
		if name == "" {
			return nil, errUnparseableResponse
		}
		args := strings.TrimSpace(tc.Function.Arguments)
		if args == "" {
			args = "{}"
		}
		if !json.Valid([]byte(args)) {
			return nil, errUnparseableResponse
		}
		requests = append(requests, toolRequest{
			id:   tc.ID,
			name: name,
			args: json.RawMessage(args),
		})
	}
	return requests, nil
}
