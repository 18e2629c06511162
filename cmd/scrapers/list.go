// Package scrapers implements commands for inspecting scraper configurations.
package scrapers

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/newsmill/newsmill/cmd/common"
	"github.com/newsmill/newsmill/internal/domain"
)

// Command returns the scrapers command group.
func Command(debug *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrapers",
		Short: "Inspect scraper configurations",
	}
	cmd.AddCommand(listCommand(debug))
	return cmd
}

func listCommand(debug *bool) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scrapers with their health counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewDeps(*debug)
			if err != nil {
				return err
			}
			defer deps.Close()

			ctx := cmd.Context()

			var list []*domain.Scraper
			if all {
				list, err = deps.Scrapers.List(ctx)
			} else {
				list, err = deps.Scrapers.ListActive(ctx)
			}
			if err != nil {
				return fmt.Errorf("failed to list scrapers: %w", err)
			}

			renderTable(list)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include inactive scrapers")

	return cmd
}

func renderTable(list []*domain.Scraper) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{
		"ID", "Name", "Site", "Variant", "Active",
		"Runs", "Success %", "Last Success", "Last Error",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Success %", Align: text.AlignRight},
		{Name: "Last Error", WidthMax: 48},
	})

	for _, sc := range list {
		t.AppendRow(table.Row{
			sc.ID,
			sc.Name,
			sc.Site,
			sc.Variant,
			sc.Active,
			sc.TotalRuns,
			fmt.Sprintf("%.1f", sc.SuccessRate()),
			formatTime(sc.LastSuccess),
			formatError(sc.LastError),
		})
	}

	t.Render()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format("2006-01-02 15:04")
}

func formatError(msg *string) string {
	if msg == nil || *msg == "" {
		return ""
	}
	// The stored error carries a stack trace; only the first line is useful
	// in a table.
	for i, r := range *msg {
		if r == '\n' {
			return (*msg)[:i]
		}
	}
	return *msg
}
