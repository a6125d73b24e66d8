// Command navigator is a terminal map client. It runs the map controller against the
// mapnav HTTP API and a Nominatim geocoder, reading commands from stdin.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samirrijal/mapnav/internal/adapters/apiclient"
	"github.com/samirrijal/mapnav/internal/adapters/console"
	natsadapter "github.com/samirrijal/mapnav/internal/adapters/nats"
	"github.com/samirrijal/mapnav/internal/adapters/nominatim"
	"github.com/samirrijal/mapnav/internal/core/domain"
	"github.com/samirrijal/mapnav/internal/navigator"
	"github.com/samirrijal/mapnav/internal/pkg/config"
	"github.com/samirrijal/mapnav/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("mapnav-navigator")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Map output goes to stdout, logs to stderr.
	logging.SetupWriter(os.Stderr, cfg.Log.Level, "text")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := apiclient.New(cfg.Client.APIBaseURL, cfg.Client.Timeout)
	geocoder := nominatim.New(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Client.Timeout)
	widget := console.NewWidget(os.Stdout)

	ctrl := navigator.New(api, api, geocoder, widget)
	events := make(chan navigator.Event)
	remote := make(chan navigator.Event, 1)

	// Saves made by other clients trigger a resync.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, live updates disabled", "error", err)
	} else {
		defer sub.Close()
		err := sub.SubscribeLocationEvents(ctx, func(ctx context.Context, event *domain.LocationEvent) error {
			select {
			case remote <- navigator.LocationsChanged{}:
			default: // a resync is already queued
			}
			return nil
		})
		if err != nil {
			slog.Warn("subscribe location events failed", "error", err)
		}
	}

	// Merge stdin commands and bus notifications into the controller's single event stream.
	input := make(chan navigator.Event)
	go func() {
		if err := widget.ReadCommands(ctx, os.Stdin, input); err != nil {
			slog.Error("read commands", "error", err)
		}
	}()
	go console.Merge(ctx, input, remote, events)

	fmt.Fprintf(os.Stdout, "mapnav navigator, API at %s. Type 'help' for commands.\n", cfg.Client.APIBaseURL)

	if err := ctrl.Run(ctx, events); err != nil && ctx.Err() == nil {
		log.Fatalf("navigator: %v", err)
	}
}
