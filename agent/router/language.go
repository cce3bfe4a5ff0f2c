package router

import "strings"

const (
	LangSpanish = "es"
	LangEnglish = "en"
)

// Stopword lists are deliberately tiny: they only need to separate the two
// languages the shop actually serves.
var spanishWords = map[string]struct{}{
	"hola": {}, "quiero": {}, "necesito": {}, "busco": {}, "comprar": {},
	"pagar": {}, "precio": {}, "cuanto": {}, "cuánto": {}, "cuesta": {},
	"gracias": {}, "tenes": {}, "tenés": {}, "tienen": {}, "el": {}, "la": {},
	"los": {}, "las": {}, "un": {}, "una": {}, "de": {}, "por": {}, "para": {},
	"que": {}, "qué": {}, "si": {}, "sí": {}, "mas": {}, "más": {}, "todo": {},
	"eso": {}, "es": {}, "agrega": {}, "agregar": {}, "quita": {}, "saca": {},
	"finalizar": {}, "pedido": {}, "menu": {}, "menú": {}, "y": {},
}

var englishWords = map[string]struct{}{
	"hello": {}, "hi": {}, "i": {}, "want": {}, "need": {}, "buy": {},
	"pay": {}, "price": {}, "how": {}, "much": {}, "cost": {}, "costs": {},
	"thanks": {}, "thank": {}, "you": {}, "the": {}, "a": {}, "an": {},
	"of": {}, "for": {}, "what": {}, "do": {}, "have": {}, "more": {},
	"add": {}, "remove": {}, "checkout": {}, "order": {}, "that": {},
	"is": {}, "all": {}, "and": {}, "please": {}, "my": {}, "to": {},
}

// DetectLanguage scores the message tokens against the stopword lists and
// returns "es", "en", or "" when the message gives no signal.
func DetectLanguage(message string) string {
	var es, en int
	for _, tok := range tokenize(message) {
		if _, ok := spanishWords[tok]; ok {
			es++
		}
		if _, ok := englishWords[tok]; ok {
			en++
		}
	}
	switch {
	case es > en:
		return LangSpanish
	case en > es:
		return LangEnglish
	default:
		return ""
	}
}

func tokenize(message string) []string {
	return strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', ',', '.', '!', '?', '¿', '¡', ';', ':':
			return true
		}
		return false
	})
}
