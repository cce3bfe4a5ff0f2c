package orchestratornode

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	contractx "github.com/tiendita-labs/tiendita/agent/contract"
	handlerx "github.com/tiendita-labs/tiendita/agent/handlers"
	statex "github.com/tiendita-labs/tiendita/agent/state"
)

// DispatchHandler runs the selected handler. A downstream collaborator
// failure is converted here into a user-safe apology in the customer's
// language; the turn still completes so the conversation is touched and
// persisted downstream.
func DispatchHandler(ctx context.Context, in *GraphState, set *handlerx.Set) (*GraphState, error) {
	if in == nil || in.Conversation == nil {
		return nil, ErrNilConversation
	}

	reply, err := set.For(in.Kind).Handle(ctx, in.Text, in.Conversation)
	if err != nil {
		if !errors.Is(err, contractx.ErrDownstream) {
			return nil, err
		}
		log.Error().Err(err).
			Str("customer_id", in.Conversation.CustomerID).
			Str("handler", string(in.Kind)).
			Msg("downstream collaborator failed")
		reply = handlerx.Apology(in.Conversation.Language)
		in.Conversation.AddTurn(statex.RoleAssistant, reply, in.Now)
		in.Failed = true
	}

	in.Reply = reply
	return in, nil
}
