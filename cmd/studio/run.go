package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ASHISH26940/asmr-studio-api/pkg/flow"
	"github.com/ASHISH26940/asmr-studio-api/pkg/replicate"
	log "github.com/sirupsen/logrus"
)

var errPaymentCanceled = errors.New("payment canceled")

// Runner walks one idea through the flow machine against a live API.
type Runner struct {
	client   *Client
	in       *bufio.Reader
	out      io.Writer
	interval time.Duration
	tier     string
	machine  *flow.Machine
}

func NewRunner(client *Client, in io.Reader, out io.Writer, interval time.Duration, tier string) *Runner {
	return &Runner{
		client:   client,
		in:       bufio.NewReader(in),
		out:      out,
		interval: interval,
		tier:     tier,
		machine: flow.New(func(from, to flow.State, ev flow.Event) {
			log.Debugf("flow: %s -> %s on %s", from, to, ev)
		}),
	}
}

func (r *Runner) State() flow.State { return r.machine.State() }

func (r *Runner) fire(ev flow.Event) {
	if _, err := r.machine.Fire(ev); err != nil {
		log.Warnf("Runner: %v", err)
	}
}

func (r *Runner) fail(err error) error {
	r.fire(flow.EventFailed)
	return err
}

// Make enhances idea, generates a video from prompt number pick (1-based, 0
// asks on stdin) and returns the finished video URL.
func (r *Runner) Make(ctx context.Context, idea string, pick int) (string, error) {
	r.fire(flow.EventSubmitIdea)
	fmt.Fprintf(r.out, "Enhancing %q...\n", idea)
	enh, err := r.client.Enhance(ctx, idea)
	if err != nil {
		return "", r.fail(fmt.Errorf("enhance: %w", err))
	}
	if len(enh.EnhancedPrompts) == 0 {
		return "", r.fail(errors.New("enhance: no prompts returned"))
	}
	r.fire(flow.EventPromptsReady)

	for i, p := range enh.EnhancedPrompts {
		fmt.Fprintf(r.out, "%d. %s\n   %s\n", i+1, p.Title, p.Description)
	}
	if pick == 0 {
		if pick, err = r.askPick(len(enh.EnhancedPrompts)); err != nil {
			return "", r.fail(err)
		}
	}
	if pick < 1 || pick > len(enh.EnhancedPrompts) {
		return "", r.fail(fmt.Errorf("pick must be between 1 and %d", len(enh.EnhancedPrompts)))
	}
	chosen := enh.EnhancedPrompts[pick-1].Description

	wallet, err := r.client.Wallet(ctx)
	if err != nil {
		return "", r.fail(fmt.Errorf("wallet: %w", err))
	}
	fmt.Fprintf(r.out, "Wallet balance: $%.2f (%d videos)\n", wallet.Balance, wallet.VideosAvailable)
	if wallet.CanGenerate {
		r.fire(flow.EventSelectPrompt)
	} else {
		r.fire(flow.EventInsufficientFunds)
		if err := r.pay(ctx); err != nil {
			return "", err
		}
	}

	video, err := r.submit(ctx, chosen, idea)
	if err != nil {
		return "", err
	}
	r.fire(flow.EventSubmitted)
	fmt.Fprintf(r.out, "Video %s submitted (prediction %s)\n", video.VideoID, video.PredictionID)

	return r.poll(ctx, video.PredictionID)
}

func (r *Runner) askPick(n int) (int, error) {
	fmt.Fprintf(r.out, "Pick a prompt [1-%d]: ", n)
	line, err := r.in.ReadString('\n')
	if err != nil && line == "" {
		return 0, fmt.Errorf("read pick: %w", err)
	}
	pick, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("pick %q is not a number", strings.TrimSpace(line))
	}
	return pick, nil
}

// pay opens a checkout and waits for the user to paste back the session id.
func (r *Runner) pay(ctx context.Context) error {
	checkout, err := r.client.Checkout(ctx, r.tier)
	if err != nil {
		return r.fail(fmt.Errorf("checkout: %w", err))
	}
	fmt.Fprintf(r.out, "Your wallet does not cover a video. Pay here:\n  %s\n", checkout.URL)
	fmt.Fprint(r.out, "Paste the session id once paid (blank to cancel): ")

	line, _ := r.in.ReadString('\n')
	sessionID := strings.TrimSpace(line)
	if sessionID == "" {
		r.fire(flow.EventPaymentCanceled)
		r.fire(flow.EventReset)
		return errPaymentCanceled
	}
	if err := r.client.VerifyCheckout(ctx, sessionID); err != nil {
		return r.fail(fmt.Errorf("verify payment: %w", err))
	}
	r.fire(flow.EventPaymentConfirmed)
	fmt.Fprintln(r.out, "Payment recorded.")
	return nil
}

// submit creates the video, going back through payment once if the server
// answers 402.
func (r *Runner) submit(ctx context.Context, enhanced, original string) (*VideoResponse, error) {
	video, err := r.client.CreateVideo(ctx, enhanced, original)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.PaymentRequired() {
		r.fire(flow.EventInsufficientFunds)
		if err := r.pay(ctx); err != nil {
			return nil, err
		}
		video, err = r.client.CreateVideo(ctx, enhanced, original)
	}
	if err != nil {
		return nil, r.fail(fmt.Errorf("create video: %w", err))
	}
	return video, nil
}

func (r *Runner) poll(ctx context.Context, predictionID string) (string, error) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		st, err := r.client.Prediction(ctx, predictionID)
		if err != nil {
			return "", r.fail(fmt.Errorf("poll: %w", err))
		}
		if st.Done {
			if st.Status == replicate.StatusSucceeded && st.OutputURL != "" {
				r.fire(flow.EventSucceeded)
				fmt.Fprintf(r.out, "Done: %s\n", st.OutputURL)
				return st.OutputURL, nil
			}
			msg := st.Error
			if msg == "" {
				msg = "video generation " + st.Status
			}
			return "", r.fail(errors.New(msg))
		}
		r.fire(flow.EventStillRunning)
		fmt.Fprintf(r.out, "Status: %s\n", st.Status)

		select {
		case <-ctx.Done():
			return "", r.fail(ctx.Err())
		case <-ticker.C:
		}
	}
}
