package llm

import (
	"context"
	"fmt"

	contractx "github.com/tiendita-labs/tiendita/agent/contract"
	statex "github.com/tiendita-labs/tiendita/agent/state"
	openrouterx "github.com/tiendita-labs/tiendita/pkg/openrouter"
)

// Client adapts the OpenRouter completion client to the Inferencer contract.
// The prompt becomes the system message; the explicit history argument is the
// only conversational state the model ever sees.
type Client struct {
	or *openrouterx.Client
}

var _ contractx.Inferencer = (*Client)(nil)

func New(cfg openrouterx.Config) (*Client, error) {
	or, err := openrouterx.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{or: or}, nil
}

// NewForRole builds a client with the role's model/temperature overrides.
func NewForRole(cfg Config, role Role) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return New(cfg.OpenRouterFor(role))
}

func (c *Client) Infer(ctx context.Context, prompt string, history []statex.Turn) (string, error) {
	messages := make([]openrouterx.Message, 0, len(history)+1)
	messages = append(messages, openrouterx.Message{
		Role:    openrouterx.RoleSystem,
		Content: prompt,
	})
	for _, turn := range history {
		role := openrouterx.RoleUser
		if turn.Role == statex.RoleAssistant {
			role = openrouterx.RoleAssistant
		}
		messages = append(messages, openrouterx.Message{
			Role:    role,
			Content: turn.Text,
		})
	}

	out, err := c.or.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("infer: %w", err)
	}
	return out, nil
}
