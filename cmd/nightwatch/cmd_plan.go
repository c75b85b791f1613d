/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/friendsincode/nightwatch/internal/config"
	"github.com/friendsincode/nightwatch/internal/db"
	"github.com/friendsincode/nightwatch/internal/export"
	"github.com/friendsincode/nightwatch/internal/planner"
	"github.com/friendsincode/nightwatch/internal/roster"
	"github.com/friendsincode/nightwatch/internal/storage"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan one night",
	Long:  "Read a roster from a file (text, JSON or YAML) or ask for it interactively, then print the night's timetable",
	RunE:  runPlan,
}

// planOptions holds the plan command flags.
type planOptions struct {
	file   string
	format string
	date   string
	output string
	seed   int64
	upload bool
	strict bool
}

var planFlags planOptions

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&planFlags.file, "file", "f", "", "Roster file; asks interactively when empty")
	planCmd.Flags().StringVar(&planFlags.format, "format", "text", "Output format: text, json or ical")
	planCmd.Flags().StringVar(&planFlags.date, "date", "", "Date the night begins (YYYY-MM-DD), defaults to today")
	planCmd.Flags().StringVarP(&planFlags.output, "output", "o", "-", "Output file, - for stdout")
	planCmd.Flags().Int64Var(&planFlags.seed, "seed", 0, "Assignment seed; overrides NIGHTWATCH_ASSIGNMENT_SEED")
	planCmd.Flags().BoolVar(&planFlags.upload, "upload", false, "Also store the timetable in the configured export storage")
	planCmd.Flags().BoolVar(&planFlags.strict, "strict", false, "Exit with an error when any squad could not be planned")
}

func runPlan(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	return planNight(cmd.Context(), cfg, planFlags, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
}

func planNight(ctx context.Context, cfg *config.Config, opts planOptions, in io.Reader, out io.Writer, logger zerolog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	night, err := parseNight(opts.date, cfg.Location())
	if err != nil {
		return err
	}

	var ro *roster.Roster
	if opts.file != "" {
		ro, err = roster.LoadFile(opts.file)
	} else {
		ro, err = roster.NewPrompter(in, out).Collect()
	}
	if err != nil {
		return err
	}

	var database *gorm.DB
	if cfg.PersistenceEnabled() {
		database, err = db.Connect(cfg)
		if err != nil {
			return err
		}
		defer db.Close(database)
		if err := db.Migrate(database); err != nil {
			return err
		}
	}

	svc := planner.NewService(database, nil, logger)
	svc.SetSeed(cfg.AssignmentSeed)
	if opts.seed != 0 {
		svc.SetSeed(opts.seed)
	}
	tt, err := svc.Plan(ctx, ro)
	if err != nil {
		return err
	}

	if err := writeTimetable(tt, format, night, cfg.Location(), opts.output, out); err != nil {
		return err
	}

	if opts.upload {
		store, err := storage.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		location, err := export.NewUploader(store, nil, logger).Upload(ctx, tt, format, night)
		if err != nil {
			return err
		}
		logger.Info().Str("location", location).Msg("timetable uploaded")
	}

	if failed := tt.FailedSquads(); failed > 0 {
		for _, sq := range tt.Squads {
			if sq.Failed() {
				logger.Warn().Str("squad", sq.Name).Str("error", sq.Error).Msg("squad not planned")
			}
		}
		if opts.strict {
			return fmt.Errorf("%d of %d squads could not be planned", failed, len(tt.Squads))
		}
	}
	return nil
}

func writeTimetable(tt *planner.Timetable, format export.Format, night time.Time, loc *time.Location, output string, stdout io.Writer) error {
	w := stdout
	if output != "" && output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == export.FormatICal {
		_, err := w.Write(export.ICal(tt, night, loc).Data)
		return err
	}
	return export.Render(w, tt, format)
}

func parseNight(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	}
	night, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: %w", raw, err)
	}
	return night, nil
}
