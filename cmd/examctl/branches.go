package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/exam-timetable-api/internal/models"
	"github.com/noah-isme/exam-timetable-api/internal/service"
	"github.com/noah-isme/exam-timetable-api/internal/timetable"
	"github.com/noah-isme/exam-timetable-api/pkg/importer"
)

func newBranchesCmd(opts *rootOptions) *cobra.Command {
	var files []string
	cmd := &cobra.Command{
		Use:   "branches",
		Short: "Check several branch timetables against each other",
		Long: "Loads one timetable file per branch and reports faculty, room and student group clashes " +
			"across them. Records without a branch take it from the file name, e.g. cse.csv is CSE.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.setup()
			if err != nil {
				return err
			}
			defer e.logger.Sync() //nolint:errcheck

			exams, err := loadBranchFiles(files)
			if err != nil {
				return err
			}
			if len(exams) == 0 {
				return fmt.Errorf("no exams found in %s", strings.Join(files, ", "))
			}
			return opts.write(cmd.OutOrStdout(), service.AnalyzeBranches(e.engine, exams, nil))
		},
	}
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "branch timetable file, repeatable")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func loadBranchFiles(files []string) ([]models.ExamSession, error) {
	var exams []models.ExamSession
	for _, file := range files {
		raws, err := importer.ParseFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		fallback := branchFromFile(file)
		for _, exam := range timetable.NormalizeAll(raws) {
			if exam.Branch == "" {
				exam.Branch = fallback
			} else {
				exam.Branch = strings.ToUpper(strings.TrimSpace(exam.Branch))
			}
			exams = append(exams, exam)
		}
	}
	return exams, nil
}

func branchFromFile(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.ToUpper(strings.TrimSpace(name))
}
