package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"HarborMonitor/internal/app"
	"HarborMonitor/internal/config"
	"HarborMonitor/internal/logging"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "harbormonitor",
		Short:        "Civic monitor for data center zoning policy in Prince George's and Charles County",
		SilenceUsage: true,
	}

	root.AddCommand(
		scanCmd(),
		analyzeCmd(),
		eventsCmd(),
		trackCmd(),
		askCmd(),
		notifyCmd(),
		runCmd(),
	)
	return root
}

// withApp builds the application for a single command invocation and tears
// it down afterwards.
func withApp(fn func(ctx context.Context, a *app.Application, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg := config.Load()
		logger := logging.New(cfg.Logging.Level)

		application, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer application.Close()

		return fn(ctx, application, args)
	}
}

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Discover new items from all configured sources",
		RunE: withApp(func(ctx context.Context, a *app.Application, _ []string) error {
			count, err := a.Discovery.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("stored %d new items\n", count)
			return nil
		}),
	}
}

func analyzeCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Classify stored articles that have not been analyzed",
		RunE: withApp(func(ctx context.Context, a *app.Application, _ []string) error {
			count, err := a.Classify.Run(ctx, limit)
			if err != nil {
				return err
			}
			fmt.Printf("analyzed %d articles\n", count)
			return nil
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "max articles per batch (0 = default)")
	return cmd
}

func eventsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Extract calendar events from analyzed articles",
		RunE: withApp(func(ctx context.Context, a *app.Application, _ []string) error {
			count, err := a.Events.Run(ctx, limit)
			if err != nil {
				return err
			}
			fmt.Printf("extracted %d events\n", count)
			return nil
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "max articles per batch (0 = default)")
	return cmd
}

func trackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "track",
		Short: "Poll watched legislative matters for status changes and new records",
		RunE: withApp(func(ctx context.Context, a *app.Application, _ []string) error {
			counts, err := a.Tracker.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("tracked %d matters: %d status changes, %d actions, %d attachments, %d votes\n",
				counts.Matters, counts.StatusChanges, counts.Histories,
				counts.Attachments, counts.Votes)
			return nil
		}),
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question grounded in stored coverage",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app.Application, args []string) error {
			answer, err := a.Ask.Run(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(answer.Text)
			if len(answer.Sources) > 0 {
				fmt.Println("\nSources:")
				for _, src := range answer.Sources {
					fmt.Printf("- %s (%s)\n", src.Title, src.URL)
				}
			}
			fmt.Printf("\nConfidence: %.0f%%\n", answer.Confidence*100)
			return nil
		}),
	}
}

func notifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Publish a digest of unalerted high-priority articles",
		RunE: withApp(func(ctx context.Context, a *app.Application, _ []string) error {
			count, err := a.Notify.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("notified about %d articles\n", count)
			return nil
		}),
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run monitoring cycles on the configured interval until interrupted",
		RunE: withApp(func(ctx context.Context, a *app.Application, _ []string) error {
			return a.RunForever(ctx)
		}),
	}
}
