package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	"freight-app/client"
	"freight-app/dashboard"
)

var rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))

func main() {
	_ = godotenv.Load()

	base := flag.String("base", envOr("API_BASE_URL", "http://localhost:9000/api/v1"), "API base URL")
	username := flag.String("user", envOr("API_USERNAME", "admin"), "username")
	password := flag.String("pass", envOr("API_PASSWORD", ""), "password")
	status := flag.String("status", "", "status filter override")
	search := flag.String("search", "", "search filter override")
	exportPath := flag.String("export", "", "write the filtered view to this xlsx file and exit")
	watch := flag.Bool("watch", false, "stay connected and re-render on live events")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(client.Config{
		BaseURL: *base,
		OnUnauthorized: func() {
			logger.Warn("session rejected by the server, sign in again")
		},
	})
	board := dashboard.NewBoard(api, logger)

	if err := login(ctx, api, *username, *password, logger); err != nil {
		logger.Fatal("login failed", zap.Error(err))
	}
	board.SessionChanged()

	if err := board.Refresh(ctx); err != nil {
		logger.Fatal("initial fetch failed", zap.Error(err))
	}

	prefsPath := dashboard.DefaultPrefsPath()
	criteria := dashboard.LoadCriteria(prefsPath)
	if *status != "" {
		criteria.Status = *status
	}
	if *search != "" {
		criteria.Search = *search
	}
	if err := dashboard.SaveCriteria(prefsPath, criteria); err != nil {
		logger.Warn("could not persist filter criteria", zap.Error(err))
	}

	if *exportPath != "" {
		if err := exportView(board, criteria, api, *exportPath); err != nil {
			logger.Fatal("export failed", zap.Error(err))
		}
		logger.Info("export written", zap.String("path", *exportPath))
		api.Logout(ctx)
		return
	}

	render(board, criteria)

	if !*watch {
		api.Logout(ctx)
		return
	}

	for ctx.Err() == nil {
		events, err := api.StreamShipments(ctx, logger)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			delay := reconnectDelay()
			logger.Warn("stream connect failed, retrying", zap.Error(err), zap.Duration("delay", delay))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
			continue
		}

		for ev := range events {
			board.Apply(ev)
			render(board, criteria)
		}

		// the connection dropped, refill the cache before resubscribing so
		// events lost in the gap are not missed
		if ctx.Err() == nil {
			if err := board.Refresh(ctx); err != nil {
				logger.Warn("refresh after reconnect failed", zap.Error(err))
			}
			render(board, criteria)
		}
	}

	api.Logout(context.Background())
}

// login signs in, taking over the session when the account is active on
// another device.
func login(ctx context.Context, api *client.Client, username, password string, logger *zap.Logger) error {
	_, err := api.Login(ctx, username, password, false)
	var conflict *client.ActiveSessionError
	if errors.As(err, &conflict) {
		logger.Warn("account active on another device, taking over the session")
		_, err = api.Login(ctx, username, password, true)
	}
	return err
}

func exportView(board *dashboard.Board, criteria dashboard.Criteria, api *client.Client, path string) error {
	view := board.BuildView(criteria, time.Now())
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return dashboard.ExportXLSX(f, view.Filtered, api.CurrentUser().IsAdmin())
}

func render(board *dashboard.Board, criteria dashboard.Criteria) {
	view := board.BuildView(criteria, time.Now())
	m := view.Metrics

	fmt.Printf("\n== Freight Dashboard (%s) ==\n", time.Now().Format("15:04:05"))
	fmt.Printf("Total: %d  Active: %d  In transit: %d  Delivered: %d  ETA soon: %d  Completion: %d%%\n",
		m.Total, m.ActiveCount, m.InTransitCount, m.DeliveredCount, m.ETASoonCount, m.CompletionRate)

	fmt.Printf("\n%-14s %-24s %-10s %-10s %s\n", "REFERENCE", "CUSTOMER", "STATUS", "TYPE", "ETA")
	for _, s := range view.Filtered {
		eta := "--"
		if s.DeliveryDate != nil {
			eta = s.DeliveryDate.Format("02 Jan 15:04")
		}
		fmt.Printf("%-14s %-24s %-10s %-10s %s\n",
			s.BookingReference, truncate(s.CustomerName, 24), s.Status, s.ShipmentType, eta)
	}

	if len(view.Critical) > 0 {
		fmt.Println("\nCritical:")
		for _, s := range view.Critical {
			fmt.Printf("  %s  %s (%s)\n", s.BookingReference, s.CustomerName, s.Status)
		}
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func reconnectDelay() time.Duration {
	return 2*time.Second + time.Duration(rng.Intn(3000))*time.Millisecond
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
