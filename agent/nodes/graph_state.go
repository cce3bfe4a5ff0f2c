package orchestratornode

import (
	"errors"
	"strings"
	"time"

	statex "github.com/tiendita-labs/tiendita/agent/state"
)

var (
	ErrInvalidMessage  = errors.New("message is empty")
	ErrInvalidCustomer = errors.New("customer id is empty")
	ErrNilConversation = errors.New("conversation is nil")
)

// GraphInput enters the turn pipeline. The conversation is already acquired
// (per-key lock held) by the caller for the whole graph invocation.
type GraphInput struct {
	Conversation *statex.Conversation
	Text         string
	Created      bool
}

type GraphOutput struct {
	Reply string
}

// GraphState flows between the pipeline nodes of one turn.
type GraphState struct {
	Conversation *statex.Conversation
	Text         string
	Created      bool
	Now          time.Time

	Kind   statex.HandlerKind
	Reply  string
	Failed bool
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	if in.Conversation == nil {
		return nil, ErrNilConversation
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		Conversation: in.Conversation,
		Text:         text,
		Created:      in.Created,
		Now:          nowFn().UTC(),
	}, nil
}
