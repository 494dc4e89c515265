package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/plan2manifest/internal/brand"
	"github.com/ivlev/plan2manifest/internal/engine"
	"github.com/ivlev/plan2manifest/internal/manifest"
	"github.com/ivlev/plan2manifest/internal/source"
	"github.com/ivlev/plan2manifest/internal/system"
)

// defaultInputDir is searched for the newest plan when no file is given.
const defaultInputDir = "input/plans"

type compileOptions struct {
	userID    string
	format    string
	out       string
	assetsDir string
	stats     bool
	quiet     bool
	// name seeds the generated output file name.
	name string
}

func newCompileCommand(ctx *commandContext) *cobra.Command {
	var opts compileOptions

	cmd := &cobra.Command{
		Use:   "compile [plan]",
		Short: "Compile a plan into a validated manifest",
		Long: "Compile a plan (text, markdown or PDF; '-' for stdin) into a manifest with timing,\n" +
			"effect layers and jobs. Without an argument the newest plan in " + defaultInputDir + " is used.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, ctx, args, opts)
		},
	}

	addOutputFlags(cmd, &opts)
	cmd.Flags().StringVar(&opts.assetsDir, "assets-dir", "", "Directory for generated brand assets (QR badge)")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Print a performance report and append it to benchmark.log")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print scene and job tables")
	return cmd
}

func newDraftCommand(ctx *commandContext) *cobra.Command {
	var opts compileOptions

	cmd := &cobra.Command{
		Use:   "draft [plan]",
		Short: "Print the pre-timing draft manifest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveInput(cmd, args)
			if err != nil {
				return err
			}
			text, err := source.ReadPlan(path)
			if err != nil {
				return err
			}
			m, err := ctx.compiler().Draft(engine.Request{Name: path, PlanText: text, UserID: opts.userID})
			if err != nil {
				return err
			}
			if opts.out == "" {
				opts.out = "-"
			}
			_, err = writeManifest(cmd.OutOrStdout(), m, opts, ctx.config.Output.Format, ctx.config.Output.Dir)
			return err
		},
	}

	addOutputFlags(cmd, &opts)
	return cmd
}

func addOutputFlags(cmd *cobra.Command, opts *compileOptions) {
	cmd.Flags().StringVarP(&opts.userID, "user", "u", "anonymous", "User id recorded in the manifest")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: json or yaml (default from config)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output file, '-' for stdout (default: timestamped file in the output dir)")
}

func resolveInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	latest, err := source.FindLatestPlan(defaultInputDir)
	if err != nil {
		return "", fmt.Errorf("%w; укажите файл плана или положите его в %s", err, defaultInputDir)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "[*] Выбран план: %s\n", latest)
	return latest, nil
}

// newRequest builds a compile request, rendering the brand QR badge into
// assetsDir when the plan names a brand URL.
func newRequest(c *engine.Compiler, name, text, userID, assetsDir string) (engine.Request, error) {
	req := engine.Request{Name: name, PlanText: text, UserID: userID}
	if assetsDir == "" {
		return req, nil
	}
	draft, err := c.Draft(req)
	if err != nil {
		return req, err
	}
	if draft.Brand.URL == "" {
		return req, nil
	}
	path, err := brand.WriteBadge(assetsDir, draft.Brand.URL, brand.DefaultBadgeSize)
	if err != nil {
		return req, fmt.Errorf("brand qr: %w", err)
	}
	req.BrandQR = path
	return req, nil
}

func runCompile(cmd *cobra.Command, ctx *commandContext, args []string, opts compileOptions) error {
	started := time.Now()
	stderr := cmd.ErrOrStderr()

	path, err := resolveInput(cmd, args)
	if err != nil {
		return err
	}
	text, err := source.ReadPlan(path)
	if err != nil {
		return err
	}

	opts.name = path
	if opts.assetsDir == "" {
		opts.assetsDir = ctx.config.Output.AssetsDir
	}
	if opts.stats {
		ctx.config.ShowStats = true
	}
	c := ctx.compiler()
	req, err := newRequest(c, path, text, opts.userID, opts.assetsDir)
	if err != nil {
		return err
	}
	if req.BrandQR != "" {
		fmt.Fprintf(stderr, "[*] QR-бейдж бренда: %s\n", req.BrandQR)
	}

	res, err := c.Compile(req)
	if err != nil {
		return err
	}
	m := res.Manifest

	fmt.Fprintf(stderr, "[*] Манифест %s | Платформа: %s | %s | %.2fs | Сцен: %d | Задач: %d\n",
		m.ID, m.Platform, m.AspectRatio, m.TotalDuration, len(m.Scenes), len(m.Jobs))
	if used := m.UsedEffects(); len(used) > 0 {
		fmt.Fprintf(stderr, "[*] Эффекты: %s\n", strings.Join(used, ", "))
	}
	if !opts.quiet {
		fmt.Fprintln(stderr, scenesTable(m))
		fmt.Fprintln(stderr, jobsTable(m))
	}
	printReport(stderr, res.Report)

	outPath, err := writeManifest(cmd.OutOrStdout(), m, opts, ctx.config.Output.Format, ctx.config.Output.Dir)
	if err != nil {
		return err
	}
	if outPath != "-" {
		fmt.Fprintf(stderr, "[+++] Успех! Манифест: %s\n", outPath)
	}

	if ctx.config.ShowStats {
		report := system.PerfReport{
			Build:  ctx.config.BuildVersion,
			Input:  path,
			Plans:  1,
			Scenes: len(m.Scenes),
			Jobs:   len(m.Jobs),
			Total:  time.Since(started),
			Stages: res.Timings,
			Host:   system.TakeSnapshot(),
		}
		fmt.Fprint(stderr, report.Format())
		if err := system.AppendBenchmark("benchmark.log", report); err != nil {
			fmt.Fprintf(stderr, "[!] Не удалось записать benchmark.log: %v\n", err)
		}
	}

	if !res.Report.IsValid {
		return fmt.Errorf("manifest %s failed structural validation", m.ID)
	}
	return nil
}

// writeManifest encodes m to opts.out, w for "-", or a timestamped file in
// dir. It returns the path written.
func writeManifest(w io.Writer, m *manifest.Manifest, opts compileOptions, defaultFormat, dir string) (string, error) {
	formatName := opts.format
	if formatName == "" {
		formatName = defaultFormat
	}
	format, err := manifest.ParseFormat(formatName)
	if err != nil {
		return "", err
	}

	out := opts.out
	if out == "-" {
		return out, manifest.Encode(w, m, format)
	}
	if out == "" {
		name := opts.name
		if name == "" || name == "-" {
			name = m.Title
		}
		out = manifest.OutputPath(dir, name, format)
	} else if opts.format == "" {
		format = manifest.FormatForPath(out)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return "", err
	}
	buf := system.GetBuffer()
	defer system.PutBuffer(buf)
	if err := manifest.Encode(buf, m, format); err != nil {
		return "", err
	}
	return out, os.WriteFile(out, buf.Bytes(), 0644)
}
