package router

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tiendita-labs/tiendita/agent/contract"
	statex "github.com/tiendita-labs/tiendita/agent/state"
)

// historyWindow bounds how much history is forwarded to the inference
// collaborator when a message is ambiguous.
const historyWindow = 10

var quantityPattern = regexp.MustCompile(`\b\d+\b`)

var salesWords = []string{
	"quiero", "comprar", "necesito", "agrega", "agregar", "quita", "saca",
	"pagar", "finalizar", "eso es todo", "confirmo",
	"want", "buy", "add", "remove", "pay", "checkout", "confirm", "that's all",
}

var productWords = []string{
	"precio", "cuanto cuesta", "cuánto cuesta", "catalogo", "catálogo",
	"menu", "menú", "disponible", "tenés", "tenes", "tienen",
	"price", "how much", "catalog", "available", "in stock", "do you have",
}

var numberWords = []string{
	"un", "una", "dos", "tres", "cuatro", "cinco", "media", "docena",
	"one", "two", "three", "four", "five", "dozen",
}

// IntentRouter selects the handler for an inbound message. Heuristics decide
// the clear cases; ambiguous messages go to the inference collaborator with
// recent history so intent continuity is preserved. The router is a pure
// function of the message and a conversation snapshot.
type IntentRouter struct {
	llm    contractx.Inferencer
	prompt string
}

func New(llm contractx.Inferencer, prompt string) *IntentRouter {
	return &IntentRouter{llm: llm, prompt: prompt}
}

func (r *IntentRouter) Classify(ctx context.Context, message string, conv *statex.Conversation) statex.HandlerKind {
	if kind, confident := heuristicKind(message); confident {
		return kind
	}

	if r.llm != nil {
		label, err := r.llm.Infer(ctx, r.prompt+"\n\nMessage: "+message, conv.RecentTurns(historyWindow))
		if err == nil {
			if kind, ok := parseKind(label); ok {
				return kind
			}
			log.Debug().Str("label", label).Msg("router: unrecognized intent label")
		} else {
			log.Warn().Err(err).Msg("router: inference unavailable, using fallback")
		}
	}

	if conv.CurrentHandler.Valid() {
		return conv.CurrentHandler
	}
	return statex.HandlerGeneral
}

// heuristicKind returns a handler kind and whether the signal was strong
// enough to skip inference entirely.
func heuristicKind(message string) (statex.HandlerKind, bool) {
	lower := strings.ToLower(message)

	sales := containsAny(lower, salesWords)
	product := containsAny(lower, productWords)
	quantity := hasQuantity(lower)

	switch {
	case sales && !product:
		return statex.HandlerSales, true
	case product && !sales:
		return statex.HandlerProduct, true
	case quantity && !product:
		// A bare quantity ("2 more") is a sales follow-up.
		return statex.HandlerSales, true
	}
	return statex.HandlerGeneral, false
}

func parseKind(label string) (statex.HandlerKind, bool) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "SALES":
		return statex.HandlerSales, true
	case "PRODUCT":
		return statex.HandlerProduct, true
	case "GENERAL":
		return statex.HandlerGeneral, true
	}
	return "", false
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func hasQuantity(lower string) bool {
	if quantityPattern.MatchString(lower) {
		return true
	}
	for _, tok := range tokenize(lower) {
		for _, w := range numberWords {
			if tok == w {
				return true
			}
		}
	}
	return false
}
