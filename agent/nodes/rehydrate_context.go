package orchestratornode

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	statex "github.com/tiendita-labs/tiendita/agent/state"
)

// RehydrateContext restores a freshly created conversation from durable
// storage so a customer returning after in-memory eviction resumes instead
// of starting cold. A corrupt record is discarded in favor of a fresh
// conversation; a storage outage degrades to a cold start.
func RehydrateContext(ctx context.Context, in *GraphState, durable statex.DurableStore) (*GraphState, error) {
	if in == nil || in.Conversation == nil {
		return nil, ErrNilConversation
	}
	if !in.Created {
		return in, nil
	}

	loaded, err := durable.LoadContext(ctx, in.Conversation.CustomerID)
	switch {
	case err == nil:
		*in.Conversation = *loaded
		in.Conversation.Touch(in.Now)
	case errors.Is(err, statex.ErrContextNotFound):
		// genuinely new customer
	case errors.Is(err, statex.ErrCorruptContext):
		log.Warn().Err(err).Str("customer_id", in.Conversation.CustomerID).
			Msg("discarding corrupt persisted conversation")
		if delErr := durable.DeleteContext(ctx, in.Conversation.CustomerID); delErr != nil {
			log.Warn().Err(delErr).Msg("delete corrupt conversation failed")
		}
	default:
		log.Warn().Err(err).Str("customer_id", in.Conversation.CustomerID).
			Msg("durable load unavailable, starting cold")
	}

	return in, nil
}
