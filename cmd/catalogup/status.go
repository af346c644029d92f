package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newStatusCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the installed version and pending catalogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, cmd, v)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			out := cmd.OutOrStdout()

			installed, found, err := s.store.CurrentVersion(ctx)
			if err != nil {
				return err
			}
			latest, _ := s.registry.Latest()

			if !found {
				_, _ = fmt.Fprintf(out, "Installed: %s\n", color.YellowString("unknown (no version stamp)"))
			} else {
				_, _ = fmt.Fprintf(out, "Installed: %s\n", installed)
			}
			if latest == nil {
				_, _ = fmt.Fprintln(out, "Latest:    none")
				return nil
			}
			_, _ = fmt.Fprintf(out, "Latest:    %s\n", latest.TargetVersion())
			if !found {
				return nil
			}

			plan, err := s.registry.CatalogsFor(installed, latest.TargetVersion())
			if err != nil {
				_, _ = fmt.Fprintf(out, "Pending:   %s\n", color.RedString(err.Error()))
				return nil
			}
			if plan.Empty() {
				_, _ = fmt.Fprintf(out, "Pending:   %s\n", color.GreenString("none, up to date"))
				return nil
			}
			_, _ = fmt.Fprintf(out, "Pending:   %v\n", plan.Versions())
			return nil
		},
	}
}
