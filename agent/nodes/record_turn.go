package orchestratornode

import (
	routerx "github.com/tiendita-labs/tiendita/agent/router"
	statex "github.com/tiendita-labs/tiendita/agent/state"
)

// RecordTurn appends the inbound user turn and feeds the message's detected
// language into the continuity heuristic before classification runs.
func RecordTurn(in *GraphState) (*GraphState, error) {
	if in == nil || in.Conversation == nil {
		return nil, ErrNilConversation
	}

	in.Conversation.ObserveLanguage(routerx.DetectLanguage(in.Text))
	in.Conversation.AddTurn(statex.RoleUser, in.Text, in.Now)
	return in, nil
}
