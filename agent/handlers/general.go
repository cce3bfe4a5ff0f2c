package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tiendita-labs/tiendita/agent/contract"
	statex "github.com/tiendita-labs/tiendita/agent/state"
)

// historyWindow bounds how many turns are forwarded as inference grounding.
const historyWindow = 10

// GeneralHandler answers free-form queries through the inference
// collaborator. It never mutates the order. On first contact it greets the
// customer with the current catalog instead of calling inference.
type GeneralHandler struct {
	llm     contractx.Inferencer
	catalog contractx.Catalog
	prompt  string
	now     func() time.Time
}

func NewGeneral(llm contractx.Inferencer, catalog contractx.Catalog, prompt string) *GeneralHandler {
	return &GeneralHandler{llm: llm, catalog: catalog, prompt: prompt, now: time.Now}
}

func (h *GeneralHandler) Kind() statex.HandlerKind {
	return statex.HandlerGeneral
}

func (h *GeneralHandler) Handle(ctx context.Context, message string, conv *statex.Conversation) (string, error) {
	if len(conv.History) <= 1 && h.catalog != nil {
		products, err := h.catalog.ListProducts(ctx, contractx.ProductFilter{Limit: 10})
		if err == nil && len(products) > 0 {
			reply := greetingReply(conv.Language, products)
			h.finish(conv, reply)
			return reply, nil
		}
		if err != nil {
			log.Warn().Err(err).Msg("general: catalog greeting unavailable")
		}
	}

	prompt := h.prompt + "\nReply in language: " + normalizeLang(conv.Language)
	reply, err := h.llm.Infer(ctx, prompt, conv.RecentTurns(historyWindow))
	if err != nil {
		return "", fmt.Errorf("%w: general inference: %v", contractx.ErrDownstream, err)
	}

	h.finish(conv, reply)
	return reply, nil
}

func (h *GeneralHandler) finish(conv *statex.Conversation, reply string) {
	conv.AddTurn(statex.RoleAssistant, reply, h.now())
	conv.CurrentHandler = statex.HandlerGeneral
}
