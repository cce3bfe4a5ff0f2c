package handlers

import (
	"fmt"
	"strings"

	contractx "github.com/tiendita-labs/tiendita/agent/contract"
	"github.com/tiendita-labs/tiendita/agent/router"
)

// The shop is Spanish-first; unknown languages get Spanish.
func normalizeLang(lang string) string {
	if lang == router.LangEnglish {
		return router.LangEnglish
	}
	return router.LangSpanish
}

// Apology is the generic user-safe reply used when a downstream collaborator
// fails mid-turn.
func Apology(lang string) string {
	if normalizeLang(lang) == router.LangEnglish {
		return "Sorry, something went wrong on our side. Please try again in a moment."
	}
	return "Lo siento, tuvimos un problema de nuestro lado. Por favor intentá de nuevo en un momento."
}

func addedReply(lang, name string, qty, total int) string {
	if normalizeLang(lang) == router.LangEnglish {
		return fmt.Sprintf("Done! I added %d x %s to your order (now %d in total). Anything else, or shall we go to checkout?", qty, name, total)
	}
	return fmt.Sprintf("¡Listo! Agregué %d x %s a tu pedido (ahora %d en total). ¿Algo más o pasamos al pago?", qty, name, total)
}

func removedReply(lang, name string) string {
	if normalizeLang(lang) == router.LangEnglish {
		return fmt.Sprintf("I removed %s from your order.", name)
	}
	return fmt.Sprintf("Saqué %s de tu pedido.", name)
}

func insufficientStockReply(lang, name string, available int) string {
	if normalizeLang(lang) == router.LangEnglish {
		return fmt.Sprintf("Sorry, we only have %d units of %s available right now, so I left your order unchanged.", available, name)
	}
	return fmt.Sprintf("Lo siento, por ahora solo tenemos %d unidades de %s, así que dejé tu pedido como estaba.", available, name)
}

func productNotFoundReply(lang, name string) string {
	if normalizeLang(lang) == router.LangEnglish {
		return fmt.Sprintf("I couldn't find %q in our catalog. Ask me for the menu to see what we have.", name)
	}
	return fmt.Sprintf("No encontré %q en nuestro catálogo. Pedime el menú para ver lo que tenemos.", name)
}

func clarifyOrderReply(lang string) string {
	if normalizeLang(lang) == router.LangEnglish {
		return "I didn't catch what you'd like to order. Could you tell me the product and quantity, e.g. \"2 pizzas\"?"
	}
	return "No entendí qué querés pedir. ¿Me decís el producto y la cantidad? Por ejemplo: \"2 pizzas\"."
}

func emptyCartReply(lang string) string {
	if normalizeLang(lang) == router.LangEnglish {
		return "Your order is empty. Tell me what you'd like and I'll add it."
	}
	return "Tu pedido está vacío. Decime qué querés y lo agrego."
}

func checkoutReply(lang string, total float64, link string) string {
	if normalizeLang(lang) == router.LangEnglish {
		return fmt.Sprintf("Your order is ready! Total $%.2f. Pay here: %s", total, link)
	}
	return fmt.Sprintf("¡Tu pedido está listo! Total $%.2f. Pagá aquí: %s", total, link)
}

func awaitingPaymentReply(lang, link string) string {
	if normalizeLang(lang) == router.LangEnglish {
		return fmt.Sprintf("Your order is already awaiting payment. Pay here: %s", link)
	}
	return fmt.Sprintf("Tu pedido ya está esperando el pago. Pagá aquí: %s", link)
}

func productInfoReply(lang string, p *contractx.Product) string {
	if normalizeLang(lang) == router.LangEnglish {
		return fmt.Sprintf("%s costs $%.2f (%d available).", p.Name, p.Price, p.AvailableQuantity)
	}
	return fmt.Sprintf("%s cuesta $%.2f (%d disponibles).", p.Name, p.Price, p.AvailableQuantity)
}

func catalogReply(lang string, products []contractx.Product) string {
	var b strings.Builder
	if normalizeLang(lang) == router.LangEnglish {
		b.WriteString("Our menu:\n")
	} else {
		b.WriteString("Nuestro menú:\n")
	}
	for _, p := range products {
		fmt.Fprintf(&b, "- %s: $%.2f\n", p.Name, p.Price)
	}
	return strings.TrimRight(b.String(), "\n")
}

func greetingReply(lang string, products []contractx.Product) string {
	if normalizeLang(lang) == router.LangEnglish {
		return "Hi! Welcome. " + catalogReply(lang, products) + "\nPick your favorite or tell me if you need help."
	}
	return "¡Hola! Bienvenido/a. " + catalogReply(lang, products) + "\nElegí tu favorito o decime si necesitás ayuda."
}
