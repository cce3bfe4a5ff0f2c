package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tiendita-labs/tiendita/agent/contract"
	statex "github.com/tiendita-labs/tiendita/agent/state"
)

// queryStopWords are stripped before treating the remainder of a catalog
// question as a product name.
var queryStopWords = map[string]struct{}{
	"cuanto": {}, "cuánto": {}, "cuesta": {}, "cuestan": {}, "precio": {},
	"de": {}, "del": {}, "la": {}, "el": {}, "los": {}, "las": {}, "un": {},
	"una": {}, "que": {}, "qué": {}, "hay": {}, "tenés": {}, "tenes": {},
	"tienen": {}, "disponible": {}, "disponibles": {}, "stock": {},
	"how": {}, "much": {}, "is": {}, "are": {}, "the": {}, "a": {}, "an": {},
	"price": {}, "of": {}, "do": {}, "you": {}, "have": {}, "available": {},
	"what": {}, "in": {}, "there": {}, "any": {},
}

var listWords = []string{"menu", "menú", "catalogo", "catálogo", "catalog", "productos", "products"}

// ProductHandler answers catalog, price, and availability questions from the
// external catalog. It may suggest items but never mutates the order.
type ProductHandler struct {
	catalog contractx.Catalog
	now     func() time.Time
}

func NewProduct(catalog contractx.Catalog) *ProductHandler {
	return &ProductHandler{catalog: catalog, now: time.Now}
}

func (h *ProductHandler) Kind() statex.HandlerKind {
	return statex.HandlerProduct
}

func (h *ProductHandler) Handle(ctx context.Context, message string, conv *statex.Conversation) (string, error) {
	lower := strings.ToLower(message)

	subject := extractSubject(lower)
	if subject == "" || containsAny(lower, listWords) {
		reply, err := h.listCatalog(ctx, conv.Language)
		if err != nil {
			return "", err
		}
		h.finish(conv, reply)
		return reply, nil
	}

	product, err := h.catalog.FindProduct(ctx, subject)
	switch {
	case errors.Is(err, contractx.ErrProductNotFound):
		reply := productNotFoundReply(conv.Language, subject)
		h.finish(conv, reply)
		return reply, nil
	case err != nil:
		return "", fmt.Errorf("%w: catalog lookup: %v", contractx.ErrDownstream, err)
	}

	reply := productInfoReply(conv.Language, product)
	h.finish(conv, reply)
	return reply, nil
}

func (h *ProductHandler) listCatalog(ctx context.Context, lang string) (string, error) {
	products, err := h.catalog.ListProducts(ctx, contractx.ProductFilter{Limit: 10})
	if err != nil {
		return "", fmt.Errorf("%w: catalog list: %v", contractx.ErrDownstream, err)
	}
	if len(products) == 0 {
		return productNotFoundReply(lang, "?"), nil
	}
	return catalogReply(lang, products), nil
}

func (h *ProductHandler) finish(conv *statex.Conversation, reply string) {
	conv.AddTurn(statex.RoleAssistant, reply, h.now())
	conv.CurrentHandler = statex.HandlerProduct
}

// extractSubject removes question scaffolding and returns what is left as a
// candidate product name.
func extractSubject(lower string) string {
	var kept []string
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		switch r {
		case ' ', ',', '.', '!', '?', '¿', '¡':
			return true
		}
		return false
	}) {
		if _, stop := queryStopWords[tok]; stop {
			continue
		}
		if containsAny(tok, listWords) {
			continue
		}
		kept = append(kept, tok)
	}
	return cleanProductName(strings.Join(kept, " "))
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
