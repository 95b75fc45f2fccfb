package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Adri-2310/chatMulti/internal/config"
	"github.com/Adri-2310/chatMulti/internal/handler"
	"github.com/Adri-2310/chatMulti/internal/hub"
	"github.com/Adri-2310/chatMulti/internal/protocol"
	"github.com/Adri-2310/chatMulti/internal/protocol/classic"
	"github.com/Adri-2310/chatMulti/internal/protocol/envelope"
	"github.com/Adri-2310/chatMulti/internal/transport"
	"github.com/Adri-2310/chatMulti/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.L().Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Init(cfg.Log)
	logger := log.L()

	// The profile decides both the wire shape and the hub's room policy.
	var opts hub.Options
	switch cfg.Chat.Profile {
	case config.ProfileEnvelope:
		opts = envelope.HubOptions(cfg.Chat.DefaultRoom)
	default:
		opts = classic.HubOptions(cfg.Chat.DefaultRoom)
	}
	opts.SendBuffer = cfg.Chat.SendBuffer

	h := hub.New(opts)

	var profile protocol.Profile
	switch cfg.Chat.Profile {
	case config.ProfileEnvelope:
		profile = envelope.New(h)
	default:
		profile = classic.New(h)
	}

	logger.Info().
		Str(log.FieldProfile, profile.Name()).
		Str(log.FieldRoom, cfg.Chat.DefaultRoom).
		Msg("starting chat relay")

	tcpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	tcpSrv := transport.NewTCPServer(tcpAddr, h, profile, cfg.Chat.MaxFrameSize)
	if err := tcpSrv.Listen(); err != nil {
		logger.Fatal().Err(err).Str("addr", tcpAddr).Msg("failed to bind tcp listener")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return tcpSrv.Serve(gctx)
	})

	if cfg.HTTP.Enabled {
		gin.SetMode(gin.ReleaseMode)
		r := gin.New()
		r.Use(gin.Recovery())

		handler.NewStatusHandler(h, profile.Name()).RegisterRoutes(r)
		gateway := transport.NewWSGateway(h, profile, cfg.Chat.MaxFrameSize)
		r.GET("/ws", gateway.Handle)

		httpSrv := &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		}

		g.Go(func() error {
			logger.Info().Str("addr", httpSrv.Addr).Msg("http server listening")
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Chat.ShutdownTimeout)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
	}
	logger.Info().Msg("chat relay stopped")
}
