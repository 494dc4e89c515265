package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newPoliciesCommand(ctx *commandContext) *cobra.Command {
	var export string

	cmd := &cobra.Command{
		Use:   "policies [platform]",
		Short: "List platform policies or show one platform's allowed effects",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			t := ctx.policies

			if export != "" {
				if err := t.Save(export); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "[+] Таблица политик %s сохранена в %s\n", t.Version(), export)
				return nil
			}

			if len(args) == 1 {
				p, ok := t.Lookup(args[0])
				if !ok {
					return fmt.Errorf("unknown platform %q", args[0])
				}
				effects := append([]string(nil), p.AllowedEffects...)
				sort.Strings(effects)
				rows := make([][]string, 0, len(effects))
				for _, e := range effects {
					rows = append(rows, []string{e})
				}
				fmt.Fprintf(out, "%s | transition %s | aspect %s | watermark %s\n",
					p.Platform, p.DefaultTransition, p.RecommendedAspect, p.WatermarkCorner)
				fmt.Fprintln(out, renderTable([]string{"Allowed effect"}, rows, nil))
				return nil
			}

			var rows [][]string
			for _, name := range t.Platforms() {
				p, _ := t.Lookup(name)
				rows = append(rows, []string{
					p.Platform,
					strings.Join(p.Aliases, ", "),
					p.DefaultTransition,
					p.RecommendedAspect,
					p.WatermarkCorner,
					strconv.Itoa(len(p.AllowedEffects)),
				})
			}
			fmt.Fprintf(out, "Policy table %s\n", t.Version())
			fmt.Fprintln(out, renderTable(
				[]string{"Platform", "Aliases", "Transition", "Aspect", "Watermark", "Effects"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&export, "export", "", "Write the active table as YAML to this path")
	return cmd
}
