package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/facetmap/internal/application/panel"
	"github.com/turtacn/facetmap/pkg/errors"
)

// CountsResult is one rendered frame as the terminal sees it.
type CountsResult struct {
	panel.Frame
	// Limit caps the rows shown; zero shows all.
	Limit int `json:"-"`
}

func (r CountsResult) categories() []string {
	cats := r.Counts.Categories()
	if r.Limit > 0 && len(cats) > r.Limit {
		cats = cats[:r.Limit]
	}
	return cats
}

func (r CountsResult) share(n int64) float64 {
	total := r.Counts.Total()
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}

func (r CountsResult) TableHeaders() []string { return []string{"Category", "Count", "Share"} }

func (r CountsResult) TableRows() [][]string {
	cats := r.categories()
	rows := make([][]string, 0, len(cats))
	for i, c := range cats {
		n := r.Counts.Get(c)
		share := fmt.Sprintf("%.1f%%", r.share(n))
		if i == 0 {
			share = color.GreenString(share)
		}
		rows = append(rows, []string{c, strconv.FormatInt(n, 10), share})
	}
	return rows
}

func (r CountsResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d hits, %d categories\n", r.Field, r.Hits, len(r.Counts))
	for _, c := range r.categories() {
		fmt.Fprintf(&sb, "  %-12s %8d  %5.1f%%\n", c, r.Counts.Get(c), r.share(r.Counts.Get(c)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// NewCountsCmd runs one synchronous refresh cycle and prints the counts.
func NewCountsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Run one refresh cycle and print per-category counts",
		Example: `  facetmap counts -o table
  facetmap counts --limit 10`,
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

			if err := rt.Panel.Refresh(ctx); err != nil {
				return err
			}
			frame, ok := rt.Panel.Snapshot()
			if !ok {
				return errors.NotFound("no frame rendered")
			}
			if frame.Status != panel.StatusOK {
				return errors.New(errors.ErrCodeInternal, "cycle rendered no data").WithDetail(frame.Err)
			}
			return PrintResult(cmd, CountsResult{Frame: frame, Limit: limit})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows to print (0 for all)")
	return cmd
}

//Personal.AI order the ending
