package orchestratornode

import (
	"errors"
	"strings"
)

var ErrEmptyReply = errors.New("handler returned empty reply")

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, ErrNilConversation
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{}, ErrEmptyReply
	}
	return GraphOutput{Reply: reply}, nil
}
