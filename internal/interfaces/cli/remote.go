package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/facetmap/pkg/client"
)

// FilterList renders a filter set for the terminal.
type FilterList struct {
	*client.FilterSet
}

func (l FilterList) TableHeaders() []string {
	return []string{"ID", "Field", "Value", "Mandate", "Active"}
}

func (l FilterList) TableRows() [][]string {
	rows := make([][]string, 0, len(l.Filters)+1)
	if l.Time != nil {
		rows = append(rows, []string{"-", l.Time.Field, l.Time.From.Format(time.RFC3339) + " TO " + l.Time.To.Format(time.RFC3339), "range", "true"})
	}
	for _, f := range l.Filters {
		rows = append(rows, []string{f.ID, f.Field, f.Value, f.Mandate, strconv.FormatBool(f.Active)})
	}
	return rows
}

func (l FilterList) String() string {
	var sb strings.Builder
	if l.Time != nil {
		fmt.Fprintf(&sb, "time  %s [%s TO %s]\n", l.Time.Field, l.Time.From.Format(time.RFC3339), l.Time.To.Format(time.RFC3339))
	}
	for _, f := range l.Filters {
		state := ""
		if !f.Active {
			state = " (inactive)"
		}
		fmt.Fprintf(&sb, "%-7s %s:%q%s\n", f.Mandate, f.Field, f.Value, state)
	}
	if sb.Len() == 0 {
		return "no filters"
	}
	return strings.TrimRight(sb.String(), "\n")
}

func remoteContext(cmd *cobra.Command) (*CLIContext, context.Context, context.CancelFunc, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	return cliCtx, ctx, cancel, nil
}

// NewRefreshCmd asks a running server for a refresh cycle.
func NewRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Ask a running server to refresh the panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ctx, cancel, err := remoteContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			state, err := cliCtx.Client.Panel().Refresh(ctx)
			if err != nil {
				return err
			}
			PrintSuccess(cmd, "refresh requested (panel "+state+")")
			return nil
		},
	}
}

// NewClickCmd clicks a category on a running server.
func NewClickCmd() *cobra.Command {
	var count int64

	cmd := &cobra.Command{
		Use:   "click <category>",
		Short: "Filter the panel on one category",
		Long:  "Appends a must filter on the panel field for the category, as a map click\nwould. Categories without documents are ignored.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ctx, cancel, err := remoteContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			var res *client.ClickResult
			if cmd.Flags().Changed("count") {
				res, err = cliCtx.Client.Panel().ClickWithCount(ctx, args[0], count)
			} else {
				res, err = cliCtx.Client.Panel().Click(ctx, args[0])
			}
			if err != nil {
				return err
			}
			if !res.Applied {
				fmt.Fprintf(cmd.OutOrStdout(), "%s has no documents, nothing filtered\n", args[0])
				return nil
			}
			PrintSuccess(cmd, fmt.Sprintf("filtered %s on %q", res.Field, args[0]))
			return nil
		},
	}
	cmd.Flags().Int64Var(&count, "count", 0, "count shown for the category (default: looked up on the server)")
	return cmd
}

// NewFiltersCmd lists or clears the filters of a running server.
func NewFiltersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "List the active filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ctx, cancel, err := remoteContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			set, err := cliCtx.Client.Filters().List(ctx)
			if err != nil {
				return err
			}
			return PrintResult(cmd, FilterList{set})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every filter and the time range",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ctx, cancel, err := remoteContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			if err := cliCtx.Client.Filters().Clear(ctx); err != nil {
				return err
			}
			PrintSuccess(cmd, "filters cleared")
			return nil
		},
	})
	return cmd
}

//Personal.AI order the ending
