package orchestratornode

import (
	"context"

	contractx "github.com/tiendita-labs/tiendita/agent/contract"
)

func ClassifyIntent(ctx context.Context, in *GraphState, router contractx.Router) (*GraphState, error) {
	if in == nil || in.Conversation == nil {
		return nil, ErrNilConversation
	}

	in.Kind = router.Classify(ctx, in.Text, in.Conversation)
	return in, nil
}
