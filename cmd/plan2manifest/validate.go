package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/plan2manifest/internal/manifest"
	"github.com/ivlev/plan2manifest/internal/validator"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Check a manifest file against the platform policies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Read(args[0])
			if err != nil {
				return err
			}
			report := validator.New(ctx.policies, ctx.config.Jobs.SoftCeiling).Validate(m)

			if format == "" || format == "text" {
				printReport(cmd.OutOrStdout(), report)
			} else {
				f, err := manifest.ParseFormat(format)
				if err != nil {
					return err
				}
				if err := manifest.Encode(cmd.OutOrStdout(), report, f); err != nil {
					return err
				}
			}
			if !report.IsValid {
				return fmt.Errorf("%s failed structural validation", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Report format: text, json or yaml")
	return cmd
}
