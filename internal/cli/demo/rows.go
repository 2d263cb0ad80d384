package demo

import (
	"fmt"

	"github.com/coral-mesh/fieldtrace/pkg/fieldtrace"
	"github.com/coral-mesh/fieldtrace/pkg/symbol"
)

// eventRow is one line of demo output.
type eventRow struct {
	Seq       int    `header:"#" json:"seq"`
	Kind      string `header:"KIND" json:"kind"`
	Field     string `header:"FIELD" json:"field"`
	Access    string `header:"ACCESS" json:"access"`
	Caller    string `header:"CALLER" json:"caller"`
	Source    string `header:"SOURCE" json:"source,omitempty"`
	Depth     int    `header:"DEPTH" json:"depth"`
	StackHash string `json:"stack_hash"`
}

func eventRows(events []fieldtrace.ErasedAccessEvent, style symbol.Style) []eventRow {
	rows := make([]eventRow, 0, len(events))
	for i, e := range events {
		r := eventRow{
			Seq:       i + 1,
			Kind:      e.Kind.String(),
			Field:     e.FieldName(),
			Access:    e.String(),
			Caller:    "?",
			Depth:     len(e.Stack),
			StackHash: fmt.Sprintf("%016x", e.Stack.Hash()),
		}
		if site, ok := e.CallSite(); ok {
			r.Caller = symbol.DemangleWith(site.SymbolName, style)
			if site.File != "" {
				r.Source = fmt.Sprintf("%s:%d", site.File, site.Line)
			}
		}
		rows = append(rows, r)
	}
	return rows
}
