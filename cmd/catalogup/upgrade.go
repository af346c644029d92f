package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/loykin/catalogup/internal/catalog"
	"github.com/loykin/catalogup/internal/engine"
	"github.com/loykin/catalogup/internal/registry"
)

func newUpgradeCmd(v *viper.Viper) *cobra.Command {
	var (
		to     string
		dryRun bool
		assume string
	)
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Apply the upgrade catalogs between the installed and the target version",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, cmd, v)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			target, err := s.target(to)
			if err != nil {
				return err
			}
			e, err := s.engine(assume)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if dryRun {
				plan, err := e.Plan(ctx, target)
				if err != nil {
					return err
				}
				printPlan(out, plan)
				return nil
			}

			res, err := e.Upgrade(ctx, target)
			if res != nil {
				printResult(out, res)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "target version (default: latest catalog)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without executing it")
	cmd.Flags().StringVar(&assume, "assume-version", "", "installed version to assume when the database has no version stamp")
	return cmd
}

func printPlan(w io.Writer, plan registry.Plan) {
	_, _ = fmt.Fprintf(w, "Installed: %s\nTarget:    %s\n", plan.Installed, plan.Target)
	if plan.Empty() {
		_, _ = fmt.Fprintln(w, "Nothing to do: schema is at the target version")
		return
	}
	_, _ = fmt.Fprintln(w, "Catalogs:")
	for _, c := range plan.Catalogs {
		desc := catalog.Describe(c)
		if desc != "" {
			desc = " - " + desc
		}
		_, _ = fmt.Fprintf(w, "  %s%s\n", c.TargetVersion(), desc)
	}
}

func printResult(w io.Writer, res *engine.Result) {
	for _, s := range res.Steps {
		status := color.GreenString("ok")
		if s.Err != nil {
			status = color.RedString("FAILED")
		}
		_, _ = fmt.Fprintf(w, "  %-8s %-7s %6d rows  %s\n", s.Version, s.Phase, s.Affected, status)
	}
	switch res.State {
	case engine.StateCommitted:
		if len(res.Steps) == 0 {
			_, _ = fmt.Fprintf(w, "Schema already at %s\n", res.Target)
			return
		}
		_, _ = fmt.Fprintf(w, "Upgrade %s: %s -> %s (%d rows)\n", color.GreenString("committed"), res.Installed, res.Target, res.Affected())
	default:
		_, _ = fmt.Fprintf(w, "Upgrade %s at %s; version stamp left at %s\n", color.RedString("failed"), lastVersion(res), res.Installed)
	}
}

func lastVersion(res *engine.Result) string {
	if n := len(res.Steps); n > 0 {
		return res.Steps[n-1].Version
	}
	return "planning"
}
