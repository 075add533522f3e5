package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/lomash27/Auro/internal/app/engine"
	feedv1 "github.com/lomash27/Auro/internal/domain/feed/v1"
	snapshotv1 "github.com/lomash27/Auro/internal/domain/snapshot/v1"
	tradev1 "github.com/lomash27/Auro/internal/domain/trade/v1"
	matchpublisher "github.com/lomash27/Auro/internal/usecase/match-publisher"
	orderreader "github.com/lomash27/Auro/internal/usecase/order-reader"
	"github.com/lomash27/Auro/internal/usecase/registry"
	"github.com/lomash27/Auro/internal/usecase/reporter"
	"github.com/lomash27/Auro/internal/usecase/snapshot"
	"github.com/lomash27/Auro/pkg/config"
	"github.com/lomash27/Auro/pkg/logger"
	"github.com/lomash27/Auro/pkg/redis"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	cfg = &config.Config{}
	if err := config.Load(cfg); err != nil {
		panic(err)
	}

	l, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	log = l
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	reg := registry.NewRegistry()

	var reader feedv1.Reader
	var tradePublisher tradev1.Publisher
	switch cfg.FeedSource {
	case config.FeedSourceKafka:
		reader = orderreader.NewReader(cfg.KafkaConfig, log)
		tradePublisher = matchpublisher.NewPublisher(cfg.TradePublisherConfig, log)
	case config.FeedSourceFile:
		fileReader, err := orderreader.NewFileReader(cfg.FeedFile, log)
		if err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "open_feed_file"})
			return
		}
		reader = fileReader
	default:
		log.Warn("unknown feed source", logger.Field{
			Key:   "feedSource",
			Value: cfg.FeedSource,
		})
		return
	}

	var snapshotStore snapshotv1.Store
	if cfg.RedisConfig.Enabled {
		redisConfig := redis.DefaultConfig()
		redisConfig.Addr = cfg.RedisConfig.Addr
		redisConfig.Username = cfg.RedisConfig.Username
		redisConfig.Password = cfg.RedisConfig.Password
		redisConfig.DB = cfg.RedisConfig.DB

		rclient := redis.NewClient(log, redisConfig)
		if err := rclient.Connect(ctx); err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "connect_redis"})
			return
		}
		defer rclient.Disconnect(ctx)

		snapshotStore = snapshot.NewStore(rclient, cfg.SnapshotConfig.Key, log)
	}

	options := app.DefaultEngineOptions()
	if interval, err := time.ParseDuration(cfg.SnapshotConfig.Interval); err == nil {
		options.SnapshotInterval = interval
	}
	options.SnapshotOffsetDelta = cfg.SnapshotConfig.OffsetDelta

	engine := app.NewEngineWithOptions(reg, reader, snapshotStore, tradePublisher, log, options)
	if err := engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "start_engine"})
		return
	}

	log.Info("matching engine started", logger.Field{
		Key:   "feedSource",
		Value: cfg.FeedSource,
	})

	select {
	case <-sigChan:
		log.Info("shutdown signal received")
	case <-engine.Done():
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := engine.Stop(stopCtx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "stop_engine"})
	}

	// Print all books at end of run, as the feed replay's final report.
	if err := reporter.New(os.Stdout).Report(reg.Snapshot()); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "report_books"})
	}

	_ = log.Sync()
}
