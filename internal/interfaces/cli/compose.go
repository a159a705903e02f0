package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/facetmap/internal/application/query"
	"github.com/turtacn/facetmap/pkg/errors"
)

// Compose formats.
const (
	FormatFlat    = "flat"
	FormatDSL     = "dsl"
	FormatEncoded = "encoded"
)

// ComposeResult is the query the next cycle would send.
type ComposeResult struct {
	Field   string                 `json:"field"`
	Indices []string               `json:"indices"`
	Flat    string                 `json:"flat,omitempty"`
	Encoded string                 `json:"encoded,omitempty"`
	DSL     map[string]interface{} `json:"dsl,omitempty"`

	text string
}

func (r ComposeResult) String() string { return r.text }

func (r ComposeResult) TableHeaders() []string { return []string{"Param", "Value"} }

func (r ComposeResult) TableRows() [][]string {
	rows := [][]string{{"field", r.Field}, {"indices", fmt.Sprint(r.Indices)}}
	if r.Flat != "" {
		rows = append(rows, []string{"q", r.Flat})
	}
	if r.Encoded != "" {
		rows = append(rows, []string{"encoded", r.Encoded})
	}
	if r.DSL != nil {
		rows = append(rows, []string{"dsl", r.text})
	}
	return rows
}

// NewComposeCmd prints the query for the current filters without executing
// it.
func NewComposeCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Print the composed query",
		Long:  "Composes the panel query from the configured saved queries and the seeded\ntime range, and prints it in the flat, encoded or structured dialect.",
		Example: `  facetmap compose --format flat
  facetmap compose --format dsl -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			rt, err := NewRuntime(ctx, cliCtx.Config, cliCtx.Logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			q, err := rt.Panel.Compose(ctx)
			if err != nil {
				return err
			}
			res, err := composeResult(q, format)
			if err != nil {
				return err
			}
			return PrintResult(cmd, res)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", FormatFlat, "query dialect (flat, encoded, dsl)")
	return cmd
}

func composeResult(q *query.Query, format string) (ComposeResult, error) {
	res := ComposeResult{Field: q.Field(), Indices: q.Indices}
	switch format {
	case FormatFlat:
		res.Flat = q.Flat()
		res.text = res.Flat
	case FormatEncoded:
		res.Encoded = q.Encode()
		res.text = res.Encoded
	case FormatDSL:
		text, err := q.Inspect()
		if err != nil {
			return res, err
		}
		res.DSL = q.DSL()
		res.text = text
	default:
		return res, errors.InvalidParam("unsupported query format").WithDetail(format)
	}
	return res, nil
}

//Personal.AI order the ending
