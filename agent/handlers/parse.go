package handlers

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	contractx "github.com/tiendita-labs/tiendita/agent/contract"
)

// itemIntent is one parsed cart mutation.
type itemIntent struct {
	Action   string `json:"action"` // add | remove
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

const (
	actionAdd    = "add"
	actionRemove = "remove"
)

var itemPattern = regexp.MustCompile(`(?i)(\d+|un|una|uno|dos|tres|cuatro|cinco|seis|one|two|three|four|five|six)\s+(?:x\s+)?([\p{L}]+(?:\s+[\p{L}]+)?)`)

var wordNumbers = map[string]int{
	"un": 1, "una": 1, "uno": 1, "one": 1,
	"dos": 2, "two": 2,
	"tres": 3, "three": 3,
	"cuatro": 4, "four": 4,
	"cinco": 5, "five": 5,
	"seis": 6, "six": 6,
}

var removeWords = []string{"quita", "quitar", "saca", "sacar", "borra", "remove", "delete", "take out"}

var checkoutWords = []string{
	"eso es todo", "finalizar", "pagar", "confirmo", "quiero pagar",
	"that's all", "thats all", "checkout", "confirm", "pay now", "proceed to pay",
}

// stop words skipped when the token right after a quantity is a filler
// ("2 more pizzas", "dos pizzas más").
var fillerWords = map[string]struct{}{
	"mas": {}, "más": {}, "more": {}, "de": {}, "of": {},
	"y": {}, "and": {}, "por": {}, "favor": {}, "porfa": {}, "please": {},
}

func isCheckoutMessage(message string) bool {
	lower := strings.ToLower(message)
	for _, w := range checkoutWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func isRemoveMessage(message string) bool {
	lower := strings.ToLower(message)
	for _, w := range removeWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// parseItems extracts quantity/product pairs with the cheap regex pass.
// Ambiguous messages fall back to the inference collaborator upstream.
func parseItems(message string) []itemIntent {
	action := actionAdd
	if isRemoveMessage(message) {
		action = actionRemove
	}

	var intents []itemIntent
	for _, m := range itemPattern.FindAllStringSubmatch(message, -1) {
		qty := parseQuantity(m[1])
		if qty <= 0 {
			continue
		}
		product := cleanProductName(m[2])
		if product == "" {
			continue
		}
		intents = append(intents, itemIntent{Action: action, Product: product, Quantity: qty})
	}
	return intents
}

func parseQuantity(raw string) int {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return wordNumbers[raw]
}

// cleanProductName drops filler tokens and trims a trailing plural "s" per
// token so the catalog lookup sees a usable name ("pizzas" -> "pizza").
func cleanProductName(raw string) string {
	var kept []string
	for _, tok := range strings.Fields(strings.ToLower(strings.TrimSpace(raw))) {
		if _, filler := fillerWords[tok]; filler {
			continue
		}
		if len(tok) > 3 && strings.HasSuffix(tok, "s") && !strings.HasSuffix(tok, "ss") {
			tok = tok[:len(tok)-1]
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// parseItemsJSON decodes the inference collaborator's structured parse. The
// model is asked for a single JSON object; anything around it is tolerated.
func parseItemsJSON(raw string) ([]itemIntent, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in parse output", contractx.ErrValidation)
	}

	var intent itemIntent
	if err := json.Unmarshal([]byte(raw[start:end+1]), &intent); err != nil {
		return nil, fmt.Errorf("%w: decode parse output: %v", contractx.ErrValidation, err)
	}

	intent.Action = strings.ToLower(strings.TrimSpace(intent.Action))
	intent.Product = cleanProductName(intent.Product)
	if intent.Action != actionAdd && intent.Action != actionRemove {
		return nil, fmt.Errorf("%w: unsupported action %q", contractx.ErrValidation, intent.Action)
	}
	if intent.Product == "" || intent.Quantity <= 0 {
		return nil, fmt.Errorf("%w: incomplete item intent", contractx.ErrValidation)
	}
	return []itemIntent{intent}, nil
}
