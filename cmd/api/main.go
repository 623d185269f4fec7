package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/azizikri/streak-rewards/internal/chain"
	"github.com/azizikri/streak-rewards/internal/config"
	httphandler "github.com/azizikri/streak-rewards/internal/delivery/http"
	"github.com/azizikri/streak-rewards/internal/delivery/kafka"
	"github.com/azizikri/streak-rewards/internal/logger"
	"github.com/azizikri/streak-rewards/internal/metadata"
	"github.com/azizikri/streak-rewards/internal/repository"
	"github.com/azizikri/streak-rewards/internal/scheduler"
	"github.com/azizikri/streak-rewards/internal/usecase"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	zl, err := logger.ReadLoggerConfig().CreateLogger()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store repository.Store
	if cfg.UsePostgres() {
		pool, err := initDB(ctx, cfg)
		if err != nil {
			zl.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := repository.RunMigrations(ctx, pool, cfg.MigrationsDir, zl); err != nil {
			zl.Fatal("failed to run migrations", zap.Error(err))
		}
		store = repository.New(pool)
	} else {
		zl.Warn("using in-memory reward ledger; payouts are forgotten on restart")
		store = repository.NewMemoryStore()
	}
	ledger := usecase.NewRewardLedger(store)

	network := chain.ResolveNetwork(cfg.AlgodNetwork, cfg.AlgodServer, cfg.AlgodPort, cfg.AlgodToken)
	node, err := chain.NewNode(network)
	if err != nil {
		zl.Fatal("failed to create algod client", zap.Error(err))
	}
	payments := chain.NewPaymentGateway(node, cfg.FundedWalletMnemonic, cfg.Rounds())
	if payments.FundedAddress() == "" {
		zl.Warn("funded wallet not configured; onboarding rewards will fail")
	} else {
		zl.Info("funded wallet loaded", zap.String("address", payments.FundedAddress()), zap.String("algod", network.Address()))
	}

	var assets *metadata.Store
	if cfg.AssetStoreEnabled() {
		r2cfg := metadata.R2Config{
			AccountID:       cfg.CloudflareAccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			Bucket:          cfg.R2BucketName,
			Endpoint:        cfg.R2Endpoint,
			CDNBaseURL:      cfg.CDNBaseURL,
		}
		client, err := metadata.NewR2Client(ctx, r2cfg)
		if err != nil {
			zl.Fatal("failed to init asset store", zap.Error(err))
		}
		assets = metadata.NewStore(client, r2cfg)
	}

	brokers := strings.Split(cfg.KafkaBrokers, ",")

	var events usecase.EventPublisher = usecase.NopPublisher
	var eventClient *kgo.Client
	if cfg.PublishEvents() {
		eventClient, err = kgo.NewClient(
			kgo.SeedBrokers(brokers...),
			kgo.ClientID(cfg.KafkaClientID+"-events"),
		)
		if err != nil {
			zl.Fatal("failed to create events kafka client", zap.Error(err))
		}
		events = kafka.NewEventPublisher(eventClient, zl)
	}

	milestones, unknown := metadata.SplitMilestones(cfg.MilestoneList())
	if len(unknown) > 0 {
		zl.Warn("ignoring milestones without a badge", zap.Ints("milestones", unknown))
	}

	service := usecase.NewClaimService(usecase.ClaimDeps{
		Ledger:    ledger,
		Payments:  payments,
		Minter:    chain.NewMinter(node, cfg.Rounds()),
		Metadata:  metadata.NewResolver(assets),
		Addresses: chain.AddressValidator{},
		Events:    events,
		Logger:    zl,
	}, usecase.ClaimPolicy{
		OnboardingMilestone: cfg.Onboarding(),
		Milestones:          milestones,
		RewardAmount:        cfg.Reward(),
		PayoutTimeout:       cfg.PayoutDeadline(),
		MintTimeout:         cfg.MintDeadline(),
	})
	direct := kafka.NewDirectGateway(service)

	var gateway usecase.RewardGateway
	var kafkaClient *kgo.Client
	var replyConsumer *kgo.Client
	var retryClient *kgo.Client

	if cfg.EventDriven() {
		kafkaClient, err = newConsumerClient(
			brokers,
			cfg.KafkaClientID,
			cfg.KafkaGroupID,
			kafka.RequestTopics()...,
		)
		if err != nil {
			zl.Fatal("failed to create kafka client", zap.Error(err))
		}

		if err := kafka.EnsureTopics(ctx, kafkaClient, cfg, zl); err != nil {
			zl.Warn("failed to ensure topics", zap.Error(err))
		}

		kgateway := kafka.NewGateway(cfg, kafkaClient, zl)
		gateway = kgateway

		consumer := kafka.NewConsumer(cfg, kafkaClient, direct, zl)
		go consumer.Start(ctx)

		retryClient, err = newConsumerClient(
			brokers,
			cfg.KafkaClientID+"-retry",
			cfg.KafkaRetryGroupID,
			kafka.RetryTopics()...,
		)
		if err != nil {
			zl.Fatal("failed to create retry kafka client", zap.Error(err))
		}
		retryConsumer := kafka.NewConsumer(cfg, retryClient, direct, zl)
		go retryConsumer.StartRetry(ctx)

		replyConsumer, err = newReplyClient(
			brokers,
			cfg.KafkaClientID+"-reply",
			kafka.ReplyTopic(cfg.KafkaInstanceID),
		)
		if err != nil {
			zl.Fatal("failed to create reply kafka client", zap.Error(err))
		}

		startReplyPoller(ctx, replyConsumer, kgateway)
	} else {
		gateway = direct
	}

	jobs, err := scheduler.NewManager(zl)
	if err != nil {
		zl.Fatal("failed to create scheduler", zap.Error(err))
	}
	if payments.FundedAddress() != "" {
		jobs.Register(scheduler.NewFundingJob(payments, cfg.Reward(), cfg.LowWatermark(), cfg.FundingInterval(), zl))
	}
	jobs.Register(scheduler.NewStatsJob(ledger, cfg.StatsInterval(), zl))
	jobs.Start()

	var images httphandler.ImagePinner
	if assets != nil {
		images = assets
	}
	handler := httphandler.NewHandler(gateway, images, zl)
	r := httphandler.NewRouter(handler, cfg.Origins(), zl)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		zl.Info("starting server", zap.String("port", cfg.AppPort), zap.Bool("event_driven", cfg.EventDriven()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Error("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Warn("http shutdown error", zap.Error(err))
	}

	jobs.Stop()

	if kafkaClient != nil {
		kafkaClient.Close()
	}
	if replyConsumer != nil {
		replyConsumer.Close()
	}
	if retryClient != nil {
		retryClient.Close()
	}
	if eventClient != nil {
		if err := eventClient.Flush(shutdownCtx); err != nil {
			zl.Warn("failed to flush claim events", zap.Error(err))
		}
		eventClient.Close()
	}

	wg.Wait()
	zl.Info("shutdown complete")
}

func initDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	connStr := fmt.Sprintf(
		"postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBSSLMode,
	)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

func newConsumerClient(brokers []string, clientID, groupID string, topics ...string) (*kgo.Client, error) {
	return kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topics...),
		kgo.DisableAutoCommit(),
	)
}

func newReplyClient(brokers []string, clientID, topic string) (*kgo.Client, error) {
	return kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.ConsumeTopics(topic),
	)
}

func startReplyPoller(ctx context.Context, client *kgo.Client, gateway *kafka.Gateway) {
	go func() {
		for {
			fetches := client.PollFetches(ctx)
			if fetches.IsClientClosed() || ctx.Err() != nil {
				return
			}
			iter := fetches.RecordIter()
			for !iter.Done() {
				record := iter.Next()
				gateway.HandleResponse(record.Value)
			}
		}
	}()
}
