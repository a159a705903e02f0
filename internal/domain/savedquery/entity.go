// Package savedquery holds the dashboard's saved queries and resolves the
// panel's selection of them into an ordered list of sub-queries.
package savedquery

import (
	"strings"

	"github.com/turtacn/facetmap/pkg/errors"
)

// Mode selects which saved queries feed the panel.
type Mode string

const (
	// ModeAll ignores the selection and matches everything.
	ModeAll Mode = "all"
	// ModeSelected uses only the chosen ids, in selection order.
	ModeSelected Mode = "selected"
	// ModeQuery uses a single ad-hoc query string.
	ModeQuery Mode = "query"
)

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	switch m {
	case ModeAll, ModeSelected, ModeQuery:
		return true
	}
	return false
}

// MatchAll is the flat-dialect query that matches every document.
const MatchAll = "*:*"

// SubQuery is one saved query.
type SubQuery struct {
	ID    string `json:"id"`
	Alias string `json:"alias,omitempty"`
	Query string `json:"query"`
}

// IsMatchAll reports whether the sub-query selects every document.
func (q SubQuery) IsMatchAll() bool {
	s := strings.TrimSpace(q.Query)
	return s == "" || s == MatchAll
}

// Validate requires an id on stored queries.
func (q SubQuery) Validate() error {
	if q.ID == "" {
		return errors.InvalidParam("saved query id is required")
	}
	return nil
}

// Selection is the panel-side choice of saved queries.
type Selection struct {
	Mode  Mode     `json:"mode" mapstructure:"mode" validate:"oneof=all selected query"`
	IDs   []string `json:"ids" mapstructure:"ids"`
	Query string   `json:"query" mapstructure:"query"`
}

//Personal.AI order the ending
