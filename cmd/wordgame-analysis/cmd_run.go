package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/svdpmukherjee/wordgame-analysis/internal/config"
	"github.com/svdpmukherjee/wordgame-analysis/internal/database"
	logger "github.com/svdpmukherjee/wordgame-analysis/internal/logging"
	"github.com/svdpmukherjee/wordgame-analysis/internal/models"
	"github.com/svdpmukherjee/wordgame-analysis/internal/pipeline"
	"github.com/svdpmukherjee/wordgame-analysis/internal/report"
	"github.com/svdpmukherjee/wordgame-analysis/internal/repository"
	"github.com/svdpmukherjee/wordgame-analysis/internal/snapshot"
)

var (
	eventsPath      string
	confessionsPath string
	outputDir       string
	persistResults  bool
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full analysis over a captured session snapshot",
		Long: `Run the full analysis: normalize captured events, reconstruct
suspicious intervals, build the population threshold table, classify every
word, reconcile confessions and emit session metrics plus audit artifacts.

Input comes from snapshot files or from the study database, depending on
input.source in the configuration.`,
		Args: cobra.NoArgs,
		RunE: runCommandE,
	}

	cmd.Flags().StringVar(&eventsPath, "events", "", "Events snapshot file or directory (overrides config)")
	cmd.Flags().StringVar(&confessionsPath, "confessions", "", "Confession snapshot file (overrides config)")
	cmd.Flags().StringVarP(&outputDir, "out", "o", "", "Output directory (overrides config)")
	cmd.Flags().BoolVar(&persistResults, "persist", false, "Also save the run to the study database")

	return cmd
}

func runCommandE(cmd *cobra.Command, args []string) error {
	if err := config.Init(projectRoot); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// CLI flags override the configuration file.
	if eventsPath != "" {
		config.Conf.Input.EventsPath = eventsPath
		config.Conf.Input.Source = "file"
	}
	if confessionsPath != "" {
		config.Conf.Input.ConfessionsPath = confessionsPath
	}
	if outputDir != "" {
		config.Conf.Output.Dir = outputDir
	}
	if persistResults {
		config.Conf.Output.Persist = true
	}

	log, err := logger.Init(config.Conf.Logging, debugLogging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()
	config.Watch(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	study, err := models.LoadStudy(config.Conf.Study.DefinitionPath)
	if err != nil {
		return fmt.Errorf("failed to load study definition: %w", err)
	}

	needDB := config.Conf.Input.Source == "database" || config.Conf.Output.Persist
	if needDB {
		if err := database.Init(log); err != nil {
			return err
		}
	}

	var in *pipeline.Input
	if config.Conf.Input.Source == "database" {
		events, err := repository.LoadRawEvents(ctx)
		if err != nil {
			return err
		}
		in = &pipeline.Input{Events: events, Study: study}
	} else {
		in, err = snapshot.BuildInput(config.Conf.Input.EventsPath, config.Conf.Input.ConfessionsPath, study)
		if err != nil {
			return err
		}
	}

	p := pipeline.New(log, config.Conf.Analysis.Params(), config.Conf.Analysis.Workers)
	res, err := p.Run(ctx, in)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	outDir := config.Conf.Output.Dir
	csvPath, err := report.WriteSessionMetricsCSV(outDir, res.SessionMetrics())
	if err != nil {
		return err
	}
	if err := report.WriteAuditArtifacts(outDir, res); err != nil {
		return err
	}
	if config.Conf.Output.Charts {
		if err := report.WriteCharts(outDir, res); err != nil {
			return err
		}
	}
	if config.Conf.Output.Persist {
		if err := repository.SaveRun(ctx, res); err != nil {
			return err
		}
		log.Info("Run persisted to database", zap.String("run_id", res.RunID))
	}

	log.Info("Run artifacts written",
		zap.String("run_id", res.RunID),
		zap.String("metrics", csvPath),
		zap.String("out_dir", outDir))
	return nil
}
