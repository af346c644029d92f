package main

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/loykin/catalogup/internal/catalog"
	"github.com/loykin/catalogup/internal/constants"
)

func borderlessTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetRowLine(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	return table
}

func newCatalogsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "catalogs",
		Short: "List the shipped upgrade catalogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, v)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			table := borderlessTable(cmd.OutOrStdout())
			table.SetHeader([]string{"VERSION", "PHASES", "DESCRIPTION"})
			for _, c := range s.registry.All() {
				phases := ""
				for i, p := range catalog.Phases(c) {
					if i > 0 {
						phases += ","
					}
					phases += string(p)
				}
				table.Append([]string{c.TargetVersion().String(), phases, catalog.Describe(c)})
			}
			table.Render()
			return nil
		},
	}
}

func newHistoryCmd(v *viper.Viper) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded upgrade phases, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, cmd, v)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			runs, err := s.store.ListRuns(ctx, limit)
			if err != nil {
				return err
			}
			table := borderlessTable(cmd.OutOrStdout())
			table.SetHeader([]string{"RUN", "VERSION", "PHASE", "AFFECTED", "STATUS", "RAN AT", "ERROR"})
			for _, r := range runs {
				status := "ok"
				if r.Failed {
					status = "failed"
				}
				table.Append([]string{shortRunID(r.RunID), r.Version, r.Phase, strconv.FormatInt(r.Affected, 10), status, r.RanAt, r.Error})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", constants.DefaultHistoryLimit, "maximum number of rows to show")
	return cmd
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
