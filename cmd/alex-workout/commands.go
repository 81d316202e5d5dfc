package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/systomic777/alex-workout/guide"
	"github.com/systomic777/alex-workout/guide/audio"
	"github.com/systomic777/alex-workout/guide/cache"
	"github.com/systomic777/alex-workout/guide/engines"
	"github.com/systomic777/alex-workout/workout"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report guidance cache coverage for the exercise list",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, c, _, exercises, err := openStack()
		if err != nil {
			return err
		}
		defer c.Close()

		st, err := c.Status(exercises)
		if err != nil {
			return err
		}
		fmt.Printf("Cached:  %d/%d cues\n", st.Cached, st.Total)
		fmt.Printf("Missing: %d\n", len(st.Missing))
		fmt.Printf("Store:   %d entries, %s on disk\n", st.Entries, humanize.Bytes(uint64(st.SizeBytes)))
		if st.Complete() {
			fmt.Println("All guidance for this workout is ready.")
		}
		return nil
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Pre-generate all guidance audio for the exercise list",
	Long: "Synthesizes and stores every cue the workout can speak: countdown\n" +
		"numbers, named phrases, exercise announcements and motivational\n" +
		"lines. Running it again only fills gaps.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, c, _, exercises, err := openStack()
		if err != nil {
			return err
		}
		defer c.Close()

		runID := uuid.NewString()
		log.Info("bulk generation started", "run", runID, "exercises", len(exercises))
		start := time.Now()

		stats, err := c.GenerateAll(cmd.Context(), exercises, func(done, total int, spec guide.CueSpec) {
			fmt.Printf("\r[%d/%d] %-24s", done+1, total, spec.Token())
		})
		fmt.Println()
		if err != nil {
			return err
		}
		log.Info("bulk generation finished", "run", runID,
			"generated", stats.Generated, "skipped", stats.Skipped,
			"failed", stats.Failed, "took", time.Since(start).Round(time.Millisecond))
		if stats.Failed > 0 {
			return fmt.Errorf("%d cues failed to generate", stats.Failed)
		}
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached guidance audio",
	RunE: func(*cobra.Command, []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		c, err := openCache(cfg, engines.NewTiered(cfg))
		if err != nil {
			return err
		}
		defer c.Close()
		if err := c.Clear(); err != nil {
			return err
		}
		fmt.Println("Guidance cache cleared.")
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the workout with spoken guidance",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, c, tiered, exercises, err := openStack()
		if err != nil {
			return err
		}
		defer c.Close()

		audioCtx, err := audio.NewContext(cfg.SampleRate)
		if err != nil {
			return err
		}
		player := audio.NewPlayer(audioCtx, cfg.FadeDuration)
		defer player.Close()

		speaker := workout.NewGuideSpeaker(c, player, tiered.Native(), exercises, cfg)

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()

		sessionID := uuid.NewString()
		log.Info("workout session started", "session", sessionID,
			"exercises", len(exercises), "strategy", cfg.Strategy, "engine", cfg.ResolvedEngine())

		run := workout.NewRun(exercises, speaker, workout.RunOptions{
			SuppressionWindow: cfg.SuppressionWindow,
			Scheduled:         cfg.Strategy == guide.StrategyScheduled,
			OnFinish:          func() { fmt.Println("\nWorkout complete.") },
		})
		run.Start()

		go display(ctx, run)
		workout.Drive(ctx, run, cfg.TickInterval)
		log.Info("workout session ended", "session", sessionID)
		return nil
	},
}

// display repaints a one-line countdown while the run is live.
func display(ctx context.Context, run *workout.Run) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			phase := run.Phase()
			if phase == workout.PhaseFinished {
				return
			}
			e := run.Current()
			fmt.Printf("\r%-20s %-9s %3ds  ", e.Name, phase, run.Clock().Second())
		}
	}
}

// openStack loads configuration, exercises, the synthesis chain and
// the cache shared by every subcommand.
func openStack() (guide.Config, *cache.Cache, *engines.Tiered, []guide.Exercise, error) {
	cfg, err := loadConfig()
	if err != nil {
		return guide.Config{}, nil, nil, nil, err
	}
	exercises, err := workout.LoadExercises(exercisesFile)
	if err != nil {
		return guide.Config{}, nil, nil, nil, err
	}
	tiered := engines.NewTiered(cfg)
	c, err := openCache(cfg, tiered)
	if err != nil {
		return guide.Config{}, nil, nil, nil, err
	}
	return cfg, c, tiered, exercises, nil
}
