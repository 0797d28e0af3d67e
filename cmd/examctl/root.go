package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-timetable-api/internal/service"
	"github.com/noah-isme/exam-timetable-api/internal/timetable"
	"github.com/noah-isme/exam-timetable-api/pkg/config"
	"github.com/noah-isme/exam-timetable-api/pkg/logger"
)

type rootOptions struct {
	pretty   bool
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "examctl",
		Short:         "Exam timetable conflict detection and resolution",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "indent JSON output")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	cmd.AddCommand(
		newTimetableCmd(opts, "detect", "Detect conflicts in a timetable file", runDetect),
		newTimetableCmd(opts, "resolve", "Detect and greedily resolve conflicts", runResolve),
		newTimetableCmd(opts, "suggest", "Rank alternative slots for conflicting exams", runSuggest),
		newTimetableCmd(opts, "fatigue", "Score student group fatigue", runFatigue),
		newTimetableCmd(opts, "analyze", "Run the full analysis pipeline", runAnalyze),
		newBranchesCmd(opts),
	)
	return cmd
}

// env bundles what every subcommand needs.
type env struct {
	cfg        *config.Config
	logger     *zap.Logger
	engine     *timetable.Engine
	timetables *service.TimetableService
}

func (o *rootOptions) setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.NewCLI(o.logLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	engine, err := service.NewEngine(cfg.Scheduler)
	if err != nil {
		return nil, fmt.Errorf("scheduler config: %w", err)
	}
	timetables := service.NewTimetableService(engine, nil, nil, nil, nil, logr, service.TimetableServiceConfig{
		MaxSessions: cfg.Scheduler.MaxSessions,
	})
	return &env{cfg: cfg, logger: logr, engine: engine, timetables: timetables}, nil
}

func (o *rootOptions) write(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if o.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
