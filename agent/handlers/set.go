package handlers

import (
	contractx "github.com/tiendita-labs/tiendita/agent/contract"
	statex "github.com/tiendita-labs/tiendita/agent/state"
)

// Set is the closed dispatch table over the three handler kinds.
type Set struct {
	byKind map[statex.HandlerKind]contractx.Handler
}

func NewSet(general, sales, product contractx.Handler) *Set {
	return &Set{
		byKind: map[statex.HandlerKind]contractx.Handler{
			statex.HandlerGeneral: general,
			statex.HandlerSales:   sales,
			statex.HandlerProduct: product,
		},
	}
}

// For returns the handler for kind, defaulting to the general handler for
// anything outside the closed set.
func (s *Set) For(kind statex.HandlerKind) contractx.Handler {
	if h, ok := s.byKind[kind]; ok && h != nil {
		return h
	}
	return s.byKind[statex.HandlerGeneral]
}
