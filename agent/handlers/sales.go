package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tiendita-labs/tiendita/agent/contract"
	statex "github.com/tiendita-labs/tiendita/agent/state"
)

// SalesHandler processes cart mutations and checkout. Parsing tries the
// cheap regex pass first and delegates ambiguous messages to the inference
// collaborator. All downstream calls happen before any cart mutation, so a
// failed turn leaves the order untouched.
type SalesHandler struct {
	llm      contractx.Inferencer
	catalog  contractx.Catalog
	payments contractx.Payments
	prompt   string
	now      func() time.Time
}

func NewSales(llm contractx.Inferencer, catalog contractx.Catalog, payments contractx.Payments, prompt string) *SalesHandler {
	return &SalesHandler{llm: llm, catalog: catalog, payments: payments, prompt: prompt, now: time.Now}
}

func (h *SalesHandler) Kind() statex.HandlerKind {
	return statex.HandlerSales
}

func (h *SalesHandler) Handle(ctx context.Context, message string, conv *statex.Conversation) (string, error) {
	if isCheckoutMessage(message) {
		return h.checkout(ctx, conv)
	}

	intents := parseItems(message)
	if len(intents) == 0 {
		var err error
		intents, err = h.inferItems(ctx, message, conv)
		if err != nil {
			if errors.Is(err, contractx.ErrDownstream) {
				return "", err
			}
			// The model answered but not with a usable intent; ask the
			// customer instead of failing the turn.
			log.Debug().Err(err).Msg("sales: unusable parse output")
			reply := clarifyOrderReply(conv.Language)
			h.finish(conv, reply)
			return reply, nil
		}
	}

	return h.applyIntents(ctx, intents, conv)
}

func (h *SalesHandler) inferItems(ctx context.Context, message string, conv *statex.Conversation) ([]itemIntent, error) {
	if h.llm == nil {
		return nil, fmt.Errorf("%w: no parse", contractx.ErrValidation)
	}
	out, err := h.llm.Infer(ctx, h.prompt+"\n\nMessage: "+message, conv.RecentTurns(historyWindow))
	if err != nil {
		return nil, fmt.Errorf("%w: sales parse inference: %v", contractx.ErrDownstream, err)
	}
	return parseItemsJSON(out)
}

func (h *SalesHandler) applyIntents(ctx context.Context, intents []itemIntent, conv *statex.Conversation) (string, error) {
	order := conv.EnsureOrder()
	var lines []string

	for _, intent := range intents {
		product, err := h.catalog.FindProduct(ctx, intent.Product)
		switch {
		case errors.Is(err, contractx.ErrProductNotFound):
			lines = append(lines, productNotFoundReply(conv.Language, intent.Product))
			continue
		case err != nil:
			return "", fmt.Errorf("%w: catalog lookup: %v", contractx.ErrDownstream, err)
		}

		if intent.Action == actionRemove {
			order.RemoveItem(product.ID)
			lines = append(lines, removedReply(conv.Language, product.Name))
			continue
		}

		// Validate requested total against availability before mutating.
		if order.Quantity(product.ID)+intent.Quantity > product.AvailableQuantity {
			lines = append(lines, insufficientStockReply(conv.Language, product.Name, product.AvailableQuantity))
			continue
		}

		total := order.AddItem(product.ID, product.Name, intent.Quantity, product.Price)
		lines = append(lines, addedReply(conv.Language, product.Name, intent.Quantity, total))
	}

	reply := strings.Join(lines, "\n")
	h.finish(conv, reply)
	return reply, nil
}

func (h *SalesHandler) checkout(ctx context.Context, conv *statex.Conversation) (string, error) {
	order := conv.EnsureOrder()

	if order.Status == statex.StatusAwaitingPayment {
		reply := awaitingPaymentReply(conv.Language, order.PaymentRef)
		h.finish(conv, reply)
		return reply, nil
	}
	if order.Empty() {
		reply := emptyCartReply(conv.Language)
		h.finish(conv, reply)
		return reply, nil
	}

	link, err := h.payments.CreatePaymentLink(ctx, order)
	if err != nil {
		return "", fmt.Errorf("%w: create payment link: %v", contractx.ErrDownstream, err)
	}
	if err := order.BeginCheckout(link); err != nil {
		return "", fmt.Errorf("checkout transition: %w", err)
	}

	reply := checkoutReply(conv.Language, order.Total(), link)
	h.finish(conv, reply)
	return reply, nil
}

func (h *SalesHandler) finish(conv *statex.Conversation, reply string) {
	conv.AddTurn(statex.RoleAssistant, reply, h.now())
	conv.CurrentHandler = statex.HandlerSales
}
