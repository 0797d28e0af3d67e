package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-timetable-api/internal/dto"
	"github.com/noah-isme/exam-timetable-api/internal/models"
	"github.com/noah-isme/exam-timetable-api/pkg/importer"
)

type timetableRunner func(ctx context.Context, e *env, exams []models.RawExam) (any, error)

func newTimetableCmd(opts *rootOptions, use, short string, run timetableRunner) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.setup()
			if err != nil {
				return err
			}
			defer e.logger.Sync() //nolint:errcheck

			exams, err := importer.ParseFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			e.logger.Debug("timetable loaded", zap.String("file", file), zap.Int("records", len(exams)))

			out, err := run(cmd.Context(), e, exams)
			if err != nil {
				return err
			}
			return opts.write(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "timetable file (.csv, .json, .yaml)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runDetect(ctx context.Context, e *env, exams []models.RawExam) (any, error) {
	result, _, err := e.timetables.Detect(ctx, dto.TimetableRequest{Exams: exams})
	return result, err
}

func runResolve(ctx context.Context, e *env, exams []models.RawExam) (any, error) {
	return e.timetables.Resolve(ctx, dto.ResolveRequest{Exams: exams, Redetect: true})
}

func runSuggest(ctx context.Context, e *env, exams []models.RawExam) (any, error) {
	return e.timetables.Suggest(ctx, dto.SuggestionsRequest{Exams: exams})
}

func runFatigue(ctx context.Context, e *env, exams []models.RawExam) (any, error) {
	return e.timetables.Fatigue(ctx, dto.TimetableRequest{Exams: exams})
}

func runAnalyze(ctx context.Context, e *env, exams []models.RawExam) (any, error) {
	return e.timetables.Analyze(ctx, dto.TimetableRequest{Exams: exams}, models.RunSourceUpload)
}
