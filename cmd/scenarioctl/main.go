package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"route-scenario-service/internal/adapters/optimizer"
	"route-scenario-service/internal/adapters/repositories"
	"route-scenario-service/internal/config"
	"route-scenario-service/internal/domain"
	"route-scenario-service/internal/platform/db"
	"route-scenario-service/internal/platform/obs"
	"route-scenario-service/internal/report"
	"route-scenario-service/internal/services"

	"github.com/joho/godotenv"
)

const usage = `usage: scenarioctl [flags] <command> [args]

commands:
  list                       list stored scenarios
  compare <id> <id> [<id>]   compare 2 or 3 scenarios
  batch <file.xlsx>...       create one scenario per spreadsheet

flags:
`

var (
	noColor  = flag.Bool("no-color", false, "Disable ANSI colors in reports")
	logLevel = flag.String("log-level", "warn", "Log level for diagnostic output")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := obs.NewLogger(os.Stderr, *logLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer obs.Install(logger)()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "scenarioctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	conn, dialect, err := db.Connect(cfg.DBDriver, cfg.DBPath, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		return err
	}

	repo := repositories.NewSQLScenarioRepository(conn, dialect)
	renderer := report.NewRenderer(!*noColor)

	switch cmd, rest := args[0], args[1:]; cmd {
	case "list":
		scenarios, err := repo.List(ctx)
		if err != nil {
			return err
		}
		return renderer.RenderList(out, scenarios)

	case "compare":
		cmp, err := services.NewComparer(repo).Compare(ctx, rest)
		if err != nil {
			return err
		}
		return renderer.Render(out, cmp)

	case "batch":
		if err := cfg.RequireOptimizer(); err != nil {
			return err
		}
		client, err := optimizer.NewClient(cfg.OptimizerURL, cfg.OptimizerTimeout)
		if err != nil {
			return err
		}
		files, err := readFiles(rest)
		if err != nil {
			return err
		}
		return runBatch(ctx, services.NewBatchOrchestrator(client, client, repo), services.NewComparer(repo), renderer, files, out)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func readFiles(paths []string) ([]domain.SourceFile, error) {
	files := make([]domain.SourceFile, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", p, err)
		}
		files = append(files, domain.SourceFile{Name: filepath.Base(p), Content: b})
	}
	return files, nil
}

func runBatch(
	ctx context.Context,
	orch *services.BatchOrchestrator,
	comparer *services.Comparer,
	renderer *report.Renderer,
	files []domain.SourceFile,
	out io.Writer,
) error {
	outcome, err := orch.Run(ctx, files, func(p domain.BatchProgress) {
		if !p.Item.Status.Terminal() {
			return
		}
		line := fmt.Sprintf("[%d/%d] %s: %s", p.Completed, p.Total, p.Item.SourceName, p.Item.Status)
		if p.Item.Error != "" {
			line += " (" + p.Item.Error + ")"
		}
		fmt.Fprintln(out, line)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d of %d files saved\n\n", outcome.Saved, len(files))

	switch outcome.Kind {
	case domain.OutcomeCompare:
		var sel domain.Selection
		for _, id := range outcome.ScenarioIDs {
			if sel.Toggle(id) != nil {
				break
			}
		}
		cmp, err := comparer.Compare(ctx, sel.IDs())
		if err != nil {
			return err
		}
		return renderer.Render(out, cmp)
	case domain.OutcomeSingle:
		fmt.Fprintf(out, "created scenario %s\n", outcome.ScenarioIDs[0])
		return nil
	default:
		return fmt.Errorf("no scenario was created")
	}
}
