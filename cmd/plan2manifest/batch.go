package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/plan2manifest/internal/engine"
	"github.com/ivlev/plan2manifest/internal/source"
	"github.com/ivlev/plan2manifest/internal/system"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var (
		workers int
		outDir  string
		opts    compileOptions
	)

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Compile every plan in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			stderr := cmd.ErrOrStderr()

			paths, err := source.ListPlans(args[0])
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("в папке %s не найдено планов", args[0])
			}
			if workers <= 0 {
				workers = ctx.config.Jobs.Workers
			}
			if outDir == "" {
				outDir = ctx.config.Output.Dir
			}
			if opts.assetsDir == "" {
				opts.assetsDir = ctx.config.Output.AssetsDir
			}
			fmt.Fprintf(stderr, "[*] Планов: %d | Воркеров: %d | Вывод: %s\n", len(paths), workers, outDir)

			c := ctx.compiler()
			reqs := make([]engine.Request, 0, len(paths))
			for _, p := range paths {
				text, err := source.ReadPlan(p)
				if err != nil {
					fmt.Fprintf(stderr, "[!] %s: %v\n", p, err)
					continue
				}
				req, err := newRequest(c, p, text, opts.userID, opts.assetsDir)
				if err != nil {
					// Compile reports the same error per plan.
					req = engine.Request{Name: p, PlanText: text, UserID: opts.userID}
				}
				reqs = append(reqs, req)
			}

			results, err := c.CompileBatch(cmd.Context(), reqs, workers)
			if err != nil {
				return err
			}

			var rows [][]string
			var failed, scenes, jobs int
			for _, r := range results {
				if r.Err != nil {
					failed++
					rows = append(rows, []string{r.Name, "error", "", "", r.Err.Error()})
					continue
				}
				m := r.Result.Manifest
				scenes += len(m.Scenes)
				jobs += len(m.Jobs)

				o := opts
				o.name = r.Name
				out, err := writeManifest(cmd.OutOrStdout(), m, o, ctx.config.Output.Format, outDir)
				if err != nil {
					failed++
					rows = append(rows, []string{r.Name, "write failed", "", "", err.Error()})
					continue
				}
				status := "ok"
				if !r.Result.Report.IsValid {
					status = "invalid"
					failed++
				}
				rows = append(rows, []string{
					r.Name,
					status,
					strconv.Itoa(len(m.Scenes)),
					strconv.Itoa(len(r.Result.Report.Warnings)),
					out,
				})
			}
			fmt.Fprintln(stderr, renderTable(
				[]string{"Plan", "Status", "Scenes", "Warnings", "Manifest"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))

			if opts.stats {
				report := system.PerfReport{
					Build:  ctx.config.BuildVersion,
					Input:  args[0],
					Plans:  len(results),
					Scenes: scenes,
					Jobs:   jobs,
					Total:  time.Since(started),
					Host:   system.TakeSnapshot(),
				}
				fmt.Fprint(stderr, report.Format())
				if err := system.AppendBenchmark("benchmark.log", report); err != nil {
					fmt.Fprintf(stderr, "[!] Не удалось записать benchmark.log: %v\n", err)
				}
			}

			if failed > 0 {
				return fmt.Errorf("не удалось собрать %d из %d планов", failed, len(results))
			}
			fmt.Fprintf(stderr, "[+++] Готово! Манифестов: %d, папка: %s\n", len(results), outDir)
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Parallel compilations (default from config)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for manifests (default from config)")
	cmd.Flags().StringVarP(&opts.userID, "user", "u", "anonymous", "User id recorded in the manifests")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: json or yaml (default from config)")
	cmd.Flags().StringVar(&opts.assetsDir, "assets-dir", "", "Directory for generated brand assets")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Print a performance report and append it to benchmark.log")
	return cmd
}
