package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/h4tr3d/jt808"
	"github.com/h4tr3d/jt808/internal/applog"
	"github.com/h4tr3d/jt808/internal/config"
	"github.com/h4tr3d/jt808/internal/dashboard"
	"github.com/h4tr3d/jt808/internal/store"
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
		fmt.Printf("jt808-server %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jt808-server: load config: %v\n", err)
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

	log.Info().Str("version", version).Str("build_time", buildTime).Msg("starting jt808-server")

	db, err := store.Open(cfg.Store.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer db.Close()

	ln, err := transport.Listen(cfg.Server.ListenAddress)
	if err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
	defer ln.Close()

	srv := session.NewServer(ln, jt808.NewRegistry(), session.ServerConfig{
		HeartbeatInterval: time.Duration(cfg.Server.HeartbeatInterval) * time.Second,
	})

	var hub *dashboard.Hub
	if cfg.Dashboard.Enabled {
		hub = dashboard.NewHub()
	}

	srv.SetCallbacks(session.ServerCallbacks{
		OnRegister: func(phone string, info jt808.RegisterInfo) (jt808.RegisterResult, []byte) {
			authCode := []byte(fmt.Sprintf("AUTH-%s", phone))
			err := db.UpsertTerminal(&store.Terminal{
				Phone:          phone,
				AuthCode:       string(authCode),
				ProvinceID:     info.ProvinceID,
				CityID:         info.CityID,
				ManufacturerID: info.ManufacturerID,
				TerminalModel:  info.TerminalModel,
				TerminalID:     info.TerminalID,
				PlateColor:     uint8(info.PlateColor),
				PlateOrVIN:     info.PlateOrVIN,
			})
			if err != nil {
				log.Error().Err(err).Str("phone", phone).Msg("persist terminal registration")
				return jt808.RegisterVehicleAlreadyRegistered, nil
			}
			log.Info().Str("phone", phone).Msg("terminal registered")
			return jt808.RegisterSuccess, authCode
		},
		OnLocationReport: func(phone string, info jt808.LocationBasicInformation, ext *jt808.LocationExtensions) {
			log.Debug().Str("phone", phone).Uint32("lat", info.Latitude).Uint32("lon", info.Longitude).Msg("location report")
			if hub != nil {
				hub.Broadcast(dashboard.LocationEvent{
					Phone:     phone,
					Latitude:  float64(info.Latitude) / 1e6,
					Longitude: float64(info.Longitude) / 1e6,
					Speed:     info.Speed,
					Bearing:   info.Bearing,
				})
			}
		},
		OnMultimediaUploaded: func(phone string, upload jt808.MultimediaUpload) {
			log.Info().Str("phone", phone).Uint32("media_id", upload.MediaID).Int("bytes", len(upload.Data)).Msg("multimedia uploaded")
		},
		OnUpgradeResult: func(phone string, info jt808.UpgradeInfo) {
			log.Info().Str("phone", phone).Uint8("result", uint8(info.Result)).Msg("upgrade result")
		},
		OnTerminalParametersReply: func(phone string, params *jt808.ParameterMap) {
			for _, id := range params.IDs() {
				value, _ := params.Get(id)
				if err := db.SaveParameter(phone, id, value); err != nil {
					log.Warn().Err(err).Str("phone", phone).Uint32("id", id).Msg("persist parameter")
				}
			}
		},
		OnDisconnect: func(phone string) {
			log.Info().Str("phone", phone).Msg("terminal disconnected")
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	if hub != nil {
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.Run(ctx)
		}()
		go func() {
			defer wg.Done()
			mux := http.NewServeMux()
			mux.Handle("/ws", hub.Handler())
			httpSrv := &http.Server{Addr: cfg.Dashboard.ListenAddress, Handler: mux}
			go func() {
				<-ctx.Done()
				httpSrv.Close()
			}()
			log.Info().Str("addr", cfg.Dashboard.ListenAddress).Msg("dashboard websocket listening")
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("dashboard server error")
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info().Str("addr", ln.Addr()).Msg("listening for terminals")
		if err := srv.Serve(ctx); err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
	}()

	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	cancel()
	wg.Wait()
	log.Info().Msg("jt808-server stopped")
}
