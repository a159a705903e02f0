package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/facetmap/internal/config"
	"github.com/turtacn/facetmap/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/facetmap/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/facetmap/internal/interfaces/http"
)

// NewServeCmd runs the HTTP API, the refresh consumer and the config watcher
// until SIGINT or SIGTERM.
func NewServeCmd() *cobra.Command {
	var noInitial bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the panel API",
		Long:  "Starts the HTTP API, runs an initial refresh cycle and keeps the panel in\nsync with filter edits, config changes and refresh events from other replicas.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cliCtx, !noInitial)
		},
	}
	cmd.Flags().BoolVar(&noInitial, "no-initial-refresh", false, "skip the refresh cycle at startup")
	return cmd
}

func runServe(ctx context.Context, cliCtx *CLIContext, initial bool) error {
	cfg := cliCtx.Config
	logger := cliCtx.Logger

	rt, err := NewRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("Runtime close failed", logging.Err(err))
		}
	}()

	server := httpapi.NewServer(httpapi.ServerConfig{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, rt.Router(Version), logger)

	var consumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		if consumer, err = newRefreshConsumer(ctx, cfg, rt, logger); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Stop(stopCtx)
	})

	if consumer != nil {
		g.Go(func() error {
			return consumer.Run(gctx)
		})
	}

	if cliCtx.ConfigPath != "" {
		err := config.Watch(cliCtx.ConfigPath, func(next *config.Config) {
			if err := rt.Panel.UpdateConfig(next.Panel, true); err != nil {
				logger.Warn("Rejected panel config", logging.Err(err))
			}
		}, func(err error) {
			logger.Warn("Ignoring invalid config change", logging.Err(err))
		})
		if err != nil {
			logger.Warn("Config watch disabled", logging.String("path", cliCtx.ConfigPath), logging.Err(err))
		}
	}

	if initial {
		if err := rt.Panel.Signal(gctx); err != nil {
			logger.Warn("Initial refresh not scheduled", logging.Err(err))
		}
	}

	logger.Info("facetmap serving",
		logging.String("version", Version),
		logging.Int("port", cfg.Server.Port),
		logging.String("backend", cfg.Backend.Kind),
		logging.String("field", cfg.Panel.Field),
		logging.Bool("redis", cfg.Redis.Enabled),
		logging.Bool("kafka", cfg.Kafka.Enabled))

	err = g.Wait()
	logger.Info("facetmap stopped")
	return err
}

// newRefreshConsumer subscribes the panel to refresh events for its field,
// creating the topics first when asked to.
func newRefreshConsumer(ctx context.Context, cfg *config.Config, rt *Runtime, logger logging.Logger) (*kafka.Consumer, error) {
	if cfg.Kafka.AutoCreateTopics {
		tm, err := kafka.NewTopicManager(cfg.Kafka.Brokers, logger)
		if err != nil {
			return nil, err
		}
		err = tm.EnsureTopics(ctx, kafka.DefaultTopics())
		_ = tm.Close()
		if err != nil {
			return nil, err
		}
	}

	// one group per replica: every replica must see every refresh
	groupID := cfg.Kafka.GroupID
	if host, err := os.Hostname(); err == nil && host != "" {
		groupID += "." + host
	}
	ccfg := kafka.ConsumerConfig{
		Brokers:  cfg.Kafka.Brokers,
		GroupID:  groupID,
		Topics:   []string{kafka.TopicPanelRefresh},
		Retry:    kafka.RetryConfig{MaxRetries: cfg.Kafka.MaxRetries},
		Security: kafkaSecurity(cfg.Kafka.Security),
	}
	if cfg.Kafka.DeadLetter {
		ccfg.Retry.DeadLetterTopic = kafka.TopicDeadLetter
	}
	consumer, err := kafka.NewConsumer(ccfg, logger)
	if err != nil {
		return nil, err
	}
	consumer.Subscribe(kafka.TopicPanelRefresh, kafka.RefreshHandler(rt.Panel, rt.Panel.Field(), logger))
	return consumer, nil
}

//Personal.AI order the ending
