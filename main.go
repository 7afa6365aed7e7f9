package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gbonee/hustle-vibes-africa-sub000/config"
	"github.com/gbonee/hustle-vibes-africa-sub000/handlers"
	"github.com/gbonee/hustle-vibes-africa-sub000/logger"
	"github.com/gbonee/hustle-vibes-africa-sub000/models"
	"github.com/gbonee/hustle-vibes-africa-sub000/services"
	"github.com/gbonee/hustle-vibes-africa-sub000/utils"
	"github.com/gbonee/hustle-vibes-africa-sub000/workers"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatal("failed to init logger: ", err)
	}
	defer lg.Sync()

	if err := cfg.Validate(); err != nil {
		lg.Fatal("invalid configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		lg.Fatal("failed to connect to database", "error", err)
	}
	if err := models.Migrate(db); err != nil {
		lg.Fatal("failed to migrate database", "error", err)
	}

	store, err := utils.NewR2Store(ctx, utils.R2Config{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKey,
		AccessKeySecret: cfg.R2AccessSecret,
		Bucket:          cfg.R2Bucket,
		CDNBaseURL:      cfg.CDNBaseURL,
	})
	if err != nil {
		lg.Fatal("failed to initialize R2 client", "error", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		lg.Fatal("invalid REDIS_URL", "error", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		lg.Warn("redis not reachable, chat history will fail until it is", "error", err)
	}

	catalogService := services.NewCatalogService(db, lg)
	badgeService := services.NewBadgeService(db, lg)
	if err := catalogService.Seed(ctx, models.DefaultCourses); err != nil {
		lg.Fatal("failed to seed course catalog", "error", err)
	}
	if err := badgeService.SeedBadgeTypes(ctx); err != nil {
		lg.Fatal("failed to seed badge types", "error", err)
	}

	leaderboardService := services.NewLeaderboardService(db, lg)
	progressService := services.NewProgressService(db, badgeService, cfg.PointsPerModule, lg)
	challengeService := services.NewChallengeService(db, store, badgeService, cfg.ChallengeBonusPoints, lg)
	videoService := services.NewVideoService(db, store, lg)
	chatService := services.NewChatService(
		services.NewRedisHistoryStore(rdb),
		services.NewOpenAICompletionClient(cfg.CompletionBaseURL, cfg.CompletionAPIKey, cfg.CompletionModel),
		services.NewGiphyClient(cfg.GIFBaseURL, cfg.GIFAPIKey),
		progressService,
		catalogService,
		cfg.GIFSearchTerm,
		lg,
	)

	sched, err := leaderboardService.StartRankScheduler(cfg.RankInterval)
	if err != nil {
		lg.Fatal("failed to start rank scheduler", "error", err)
	}
	defer func() { _ = sched.Shutdown() }()

	if cfg.ProfileSyncURL != "" {
		workers.NewProfileSyncWorker(db, cfg.ProfileSyncURL, cfg.ProfileSyncPath, cfg.GatewayToken, lg).Start(ctx)
	} else {
		lg.Warn("PROFILE_SYNC_URL not set, leaderboard names will be empty")
	}

	deps := handlers.Deps{
		Log:            lg,
		GatewayToken:   cfg.GatewayToken,
		AllowedOrigins: cfg.AllowedOrigins,
		Catalog:        catalogService,
		Progress:       progressService,
		Leaderboard:    leaderboardService,
		Badges:         badgeService,
		Challenges:     challengeService,
		Videos:         videoService,
		Chat:           chatService,
	}
	if cfg.AuthServiceURL != "" {
		deps.TokenValidator = services.NewAuthServiceClient(cfg.AuthServiceURL, cfg.GatewayToken, lg)
	}
	app := handlers.NewApp(deps)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			lg.Error("server error", "error", err)
			stop()
		}
	}()

	lg.Info("server running", "port", cfg.Port, "origins", cfg.AllowedOrigins, "rank_interval", cfg.RankInterval.String())

	<-ctx.Done()
	lg.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		lg.Error("shutdown error", "error", err)
	}
}
