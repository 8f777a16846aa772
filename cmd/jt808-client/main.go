package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/h4tr3d/jt808"
	"github.com/h4tr3d/jt808/internal/applog"
	"github.com/h4tr3d/jt808/internal/config"
	"github.com/h4tr3d/jt808/session"
	"github.com/h4tr3d/jt808/transport"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	configFile := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("jt808-client %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jt808-client: load config: %v\n", err)
		os.Exit(1)
	}

	if cfg.Logging.JSON {
		os.Setenv(applog.EnvLogJSON, "true")
	}
	if cfg.Logging.Level != "" {
		os.Setenv(applog.EnvLogLevel, cfg.Logging.Level)
	}
	applog.ConfigureRuntime()
	log := applog.Component("main")

	log.Info().Str("version", version).Str("build_time", buildTime).Msg("starting jt808-client")

	client := session.NewClient(transport.TCPDialer{}, jt808.NewRegistry(), session.ClientConfig{
		Phone: cfg.Client.Phone,
		RegisterInfo: jt808.RegisterInfo{
			ManufacturerID: "JT808D",
			TerminalModel:  "demo-terminal",
			TerminalID:     "DEMO001",
			PlateColor:     jt808.PlateUnregistered,
			PlateOrVIN:     "DEMOVIN00000001",
		},
		HeartbeatInterval: time.Duration(cfg.Client.HeartbeatInterval) * time.Second,
		ResponseTimeout:   10 * time.Second,
	})

	client.SetCallbacks(session.ClientCallbacks{
		OnSetParameters: func(params *jt808.ParameterMap) {
			event := log.Info().Int("count", params.Len())
			if secs, ok := params.GetUint32(jt808.ParamHeartbeatInterval); ok {
				event = event.Uint32("heartbeat_interval_s", secs)
			} else {
				event = event.Bool("heartbeat_disabled", true)
			}
			event.Msg("platform pushed parameters")
		},
		OnUpgrade: func(info jt808.UpgradeInfo) jt808.UpgradeResult {
			log.Info().Int("bytes", len(info.Data)).Str("version", info.Version).Msg("upgrade package received")
			return jt808.UpgradeSuccess
		},
		OnTrackingControl: func(ctl jt808.LocationTrackingControl) {
			log.Info().Uint16("interval", ctl.Interval).Msg("tracking control changed")
		},
		OnLocationQuery: func() (jt808.LocationBasicInformation, *jt808.LocationExtensions) {
			return currentLocation(), jt808.NewLocationExtensions()
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	defer connectCancel()
	if err := client.Connect(connectCtx, cfg.Client.RemoteAddress); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Client.RemoteAddress).Msg("connect")
	}
	log.Info().Str("addr", cfg.Client.RemoteAddress).Msg("registered and authenticated")

	client.Run(ctx)
	defer client.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	reportTicker := time.NewTicker(10 * time.Second)
	defer reportTicker.Stop()

	for {
		select {
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
			cancel()
			log.Info().Msg("jt808-client stopped")
			return
		case <-reportTicker.C:
			info := currentLocation()
			if err := client.SendLocationReport(info, jt808.NewLocationExtensions()); err != nil {
				log.Warn().Err(err).Msg("send location report failed")
			}
		}
	}
}

// currentLocation is a placeholder position source; a real terminal would
// read this from a GNSS module.
func currentLocation() jt808.LocationBasicInformation {
	return jt808.LocationBasicInformation{
		Latitude:  31230000,
		Longitude: 121470000,
		Speed:     0,
		Bearing:   0,
		Time:      time.Now().UTC().Add(8 * time.Hour).Format("060102150405"),
	}
}
