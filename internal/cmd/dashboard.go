package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/cxde-rxnin/carekeep/internal/dashboard"
	"github.com/cxde-rxnin/carekeep/internal/health"
	"github.com/cxde-rxnin/carekeep/internal/metrics"
	"github.com/cxde-rxnin/carekeep/internal/realtime"
)

const (
	refreshInterval = 15 * time.Second

	// The channel never retries on its own; the dashboard owns the
	// policy and uses a fixed delay.
	reconnectDelay = 5 * time.Second
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Watch live metrics and activity",
	Long:  "Renders the hospital dashboard in the terminal and keeps it fresh\nover the realtime channel. Runs until interrupted; its own Prometheus\nmetrics are exposed on METRICS_PORT while it runs.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		ctx := cmd.Context()

		metrics.Register()
		srv := metrics.NewServer(":" + a.cfg.MetricsPort)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", "error", err)
			}
		}()
		defer srv.Close()

		checker := health.NewChecker(a.api, a.logger, prometheus.DefaultRegisterer)
		model := dashboard.New(a.api, a.logger)

		repaint := make(chan struct{}, 1)
		disconnected := make(chan struct{}, 1)

		wireRealtime(a.channel, model, repaint, disconnected)
		a.channel.Connect(ctx)
		defer a.channel.Disconnect()

		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()

		renderDashboard(ctx, model, checker)
		for {
			select {
			case <-ctx.Done():
				fmt.Println()
				fmt.Println(faintStyle.Render("Dashboard stopped."))
				return nil
			case <-ticker.C:
				renderDashboard(ctx, model, checker)
			case <-repaint:
				renderDashboard(ctx, model, checker)
			case <-disconnected:
				a.logger.Warn("realtime connection lost, retrying", "delay", reconnectDelay)
				select {
				case <-time.After(reconnectDelay):
				case <-ctx.Done():
					return nil
				}
				a.channel.Connect(ctx)
			}
		}
	},
}

// wireRealtime registers the dashboard's channel handlers. The error
// handler goes in first: On dials lazily when no socket exists, and a
// failure from that very first dial must already have somewhere to go.
func wireRealtime(ch *realtime.Channel, model *dashboard.Model, repaint, disconnected chan struct{}) {
	ch.On(realtime.EventError, func(json.RawMessage) {
		nudge(disconnected)
	})
	ch.On(realtime.EventActivityUpdate, func(data json.RawMessage) {
		model.HandleRaw(data)
		nudge(repaint)
	})
}

// nudge is a non-blocking signal; a pending repaint already covers the
// new one.
func nudge(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func renderDashboard(ctx context.Context, model *dashboard.Model, checker *health.Checker) {
	m := model.Metrics(ctx)
	ready := checker.Readiness(ctx)

	var b strings.Builder
	fmt.Fprintln(&b, renderTitle("CareKeep dashboard"))
	fmt.Fprintln(&b, faintStyle.Render(time.Now().Local().Format("2006-01-02 15:04:05")))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, kv("Patients", fmt.Sprintf("%d", m.Patients)))
	fmt.Fprintln(&b, kv("Backups", fmt.Sprintf("%d", m.Backups)))
	fmt.Fprintln(&b, kv("Last backup", humanTime(m.LastBackup)))

	if ready.Status == "up" {
		fmt.Fprintln(&b, kv("API", okStyle.Render("reachable")))
	} else {
		fmt.Fprintln(&b, kv("API", errStyle.Render("unreachable")))
	}

	feed := model.Feed()
	if len(feed) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, labelStyle.Render("Recent activity"))
		for _, ev := range feed {
			line := fmt.Sprintf("  %s  %-8s  %s", ev.At.Local().Format("15:04:05"), ev.Type, ev.Message)
			if ev.Status == "failed" {
				line = errStyle.Render(line)
			}
			fmt.Fprintln(&b, line)
		}
	}

	// Home the cursor and clear so refreshes repaint in place.
	fmt.Print("\033[H\033[2J")
	fmt.Print(b.String())
}
