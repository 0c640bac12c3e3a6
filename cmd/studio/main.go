// Command studio is a terminal client for the ASMR Studio API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type options struct {
	apiURL   string
	token    string
	verbose  bool
	interval time.Duration
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "studio",
		Short:         "Turn an idea into an ASMR video from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetOutput(cmd.ErrOrStderr())
			log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
			if opts.verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api", envOr("STUDIO_API_URL", "http://localhost:8080"), "API base URL")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("STUDIO_TOKEN"), "bearer token printed by the login command")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log flow transitions")
	root.PersistentFlags().DurationVar(&opts.interval, "poll", 2*time.Second, "status poll interval")

	root.AddCommand(newLoginCmd(opts), newWalletCmd(opts), newMakeCmd(opts), newStatusCmd(opts))
	return root
}

func newLoginCmd(opts *options) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a token for STUDIO_TOKEN",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := NewClient(opts.apiURL, "").Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", os.Getenv("STUDIO_PASSWORD"), "account password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newWalletCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "wallet",
		Short: "Show the wallet balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := NewClient(opts.apiURL, opts.token).Wallet(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Balance: $%.2f\nVideos available: %d\nPrice per video: $%.2f\n",
				w.Balance, w.VideosAvailable, float64(w.PriceCents)/100)
			return nil
		},
	}
}

func newMakeCmd(opts *options) *cobra.Command {
	var (
		pick int
		tier string
	)
	cmd := &cobra.Command{
		Use:   "make <idea>",
		Short: "Enhance an idea, pay if needed, generate and wait for the video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := NewRunner(NewClient(opts.apiURL, opts.token), cmd.InOrStdin(), cmd.OutOrStdout(), opts.interval, tier)
			_, err := r.Make(cmd.Context(), args[0], pick)
			return err
		},
	}
	cmd.Flags().IntVar(&pick, "pick", 0, "prompt number to use (asks when 0)")
	cmd.Flags().StringVar(&tier, "tier", "pro", "wallet pack to buy when the balance is short")
	return cmd
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status <prediction-id>",
		Short: "Show a prediction's status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := NewClient(opts.apiURL, opts.token).Prediction(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s", st.ID, st.Status)
			if st.OutputURL != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " %s", st.OutputURL)
			}
			if st.Error != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (%s)", st.Error)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Errorf("studio: %v", err)
		os.Exit(1)
	}
}
