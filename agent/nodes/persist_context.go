package orchestratornode

import (
	"context"

	"github.com/rs/zerolog/log"

	statex "github.com/tiendita-labs/tiendita/agent/state"
)

// PersistContext refreshes the in-memory TTL and writes the conversation
// through to durable storage. A durable write failure is logged, not
// surfaced: conversational continuity within the TTL window does not depend
// on it.
func PersistContext(ctx context.Context, in *GraphState, store *statex.ContextStore, durable statex.DurableStore) (*GraphState, error) {
	if in == nil || in.Conversation == nil {
		return nil, ErrNilConversation
	}

	store.Touch(in.Conversation)
	if err := durable.SaveContext(ctx, in.Conversation); err != nil {
		log.Warn().Err(err).Str("customer_id", in.Conversation.CustomerID).
			Msg("durable save failed")
	}
	return in, nil
}
