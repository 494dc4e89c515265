package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/plan2manifest/internal/brand"
)

func newBrandQRCommand(ctx *commandContext) *cobra.Command {
	var (
		dir  string
		size int
	)

	cmd := &cobra.Command{
		Use:   "brand-qr <url>",
		Short: "Render the brand QR badge used for call-to-action scenes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = ctx.config.Output.AssetsDir
			}
			if dir == "" {
				dir = "assets"
			}
			path, err := brand.WriteBadge(dir, args[0], size)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[+] %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "out", "o", "", "Output directory (default: output.assets_dir or ./assets)")
	cmd.Flags().IntVar(&size, "size", brand.DefaultBadgeSize, "Badge size in pixels")
	return cmd
}
