package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"flight-event-mock-service/internal/domain/entity"

	"github.com/spf13/cobra"
)

// EventImporter loads recorded events for a flight
type EventImporter interface {
	ImportEvents(ctx context.Context, flightID uint, r io.Reader) (int, error)
}

// SessionRunner drives a playback session
type SessionRunner interface {
	PlayEvent(ctx context.Context, flightID, eventID uint, isReplay bool) (*entity.PlayResult, error)
	StartSession(ctx context.Context, flightID uint) (*entity.SessionResult, error)
	ResetSession(ctx context.Context, flightID uint) (*entity.SessionResult, error)
	AbortSession(ctx context.Context, flightID uint) (*entity.SessionResult, error)
	RunCleanup(ctx context.Context, flightID uint, text string) (*entity.CleanupReport, error)
}

// Services is what the commands operate on. Close releases the backing stores.
type Services struct {
	Events   EventImporter
	Sessions SessionRunner
	Close    func()
}

// Loader builds Services on demand so --help never touches a database
type Loader func(ctx context.Context) (*Services, error)

// SetupCLI registers the replay commands on rootCmd
func SetupCLI(rootCmd *cobra.Command, load Loader) {
	rootCmd.PersistentFlags().Uint("flight", 0, "flight id")
	rootCmd.SilenceUsage = true

	importCmd := &cobra.Command{
		Use:   "import [csv file]",
		Short: "Replace a flight's events with the rows of a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flightID, err := flightFlag(cmd)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			return withServices(cmd, load, func(ctx context.Context, svc *Services) error {
				count, err := svc.Events.ImportEvents(ctx, flightID, f)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]interface{}{
					"status":  entity.StatusSuccess,
					"message": fmt.Sprintf("Imported %d events", count),
					"count":   count,
				})
			})
		},
	}

	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Run cleanup statements one by one and report failures",
		RunE: func(cmd *cobra.Command, args []string) error {
			flightID, err := flightFlag(cmd)
			if err != nil {
				return err
			}
			query, _ := cmd.Flags().GetString("query")
			return withServices(cmd, load, func(ctx context.Context, svc *Services) error {
				report, err := svc.Sessions.RunCleanup(ctx, flightID, query)
				if err != nil {
					return err
				}
				if err := printJSON(cmd, report); err != nil {
					return err
				}
				if report.Status == entity.StatusError {
					return fmt.Errorf("%s", report.Message)
				}
				return nil
			})
		},
	}
	cleanupCmd.Flags().String("query", "", "cleanup statements; defaults to the flight's configured query")

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "Deliver one event to the configured callback",
		RunE: func(cmd *cobra.Command, args []string) error {
			flightID, err := flightFlag(cmd)
			if err != nil {
				return err
			}
			eventID, _ := cmd.Flags().GetUint("event")
			if eventID == 0 {
				return fmt.Errorf("--event is required")
			}
			replay, _ := cmd.Flags().GetBool("replay")
			return withServices(cmd, load, func(ctx context.Context, svc *Services) error {
				result, err := svc.Sessions.PlayEvent(ctx, flightID, eventID, replay)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}
	playCmd.Flags().Uint("event", 0, "event id")
	playCmd.Flags().Bool("replay", false, "deliver without touching the played flags")

	rootCmd.AddCommand(
		importCmd,
		cleanupCmd,
		playCmd,
		sessionCommand("start", "Run pre-start cleanup and tasks, then clear played flags", load,
			func(ctx context.Context, s SessionRunner, id uint) (*entity.SessionResult, error) {
				return s.StartSession(ctx, id)
			}),
		sessionCommand("reset", "Clear played flags and rerun cleanup and tasks", load,
			func(ctx context.Context, s SessionRunner, id uint) (*entity.SessionResult, error) {
				return s.ResetSession(ctx, id)
			}),
		sessionCommand("abort", "Stop a session and restore the flight", load,
			func(ctx context.Context, s SessionRunner, id uint) (*entity.SessionResult, error) {
				return s.AbortSession(ctx, id)
			}),
	)
}

func sessionCommand(use, short string, load Loader, run func(context.Context, SessionRunner, uint) (*entity.SessionResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			flightID, err := flightFlag(cmd)
			if err != nil {
				return err
			}
			return withServices(cmd, load, func(ctx context.Context, svc *Services) error {
				result, err := run(ctx, svc.Sessions, flightID)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}
}

func flightFlag(cmd *cobra.Command) (uint, error) {
	id, err := cmd.Flags().GetUint("flight")
	if err != nil {
		return 0, fmt.Errorf("error retrieving flight flag: %w", err)
	}
	if id == 0 {
		return 0, fmt.Errorf("--flight is required")
	}
	return id, nil
}

func withServices(cmd *cobra.Command, load Loader, fn func(context.Context, *Services) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := load(ctx)
	if err != nil {
		return err
	}
	if svc.Close != nil {
		defer svc.Close()
	}
	return fn(ctx, svc)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
