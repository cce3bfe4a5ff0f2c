package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/router.txt
	routerRaw string

	//go:embed template/general.txt
	generalRaw string

	//go:embed template/sales_parser.txt
	salesParserRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Router      string
	General     string
	SalesParser string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings. Safe to call
// concurrently; the embed is compile-time and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Router:      strings.TrimSpace(routerRaw),
		General:     strings.TrimSpace(generalRaw),
		SalesParser: strings.TrimSpace(salesParserRaw),
	}
}
