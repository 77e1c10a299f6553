package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ChatHive/internal/app/server"
	"ChatHive/internal/config"
	"ChatHive/internal/delivery/http"
	"ChatHive/internal/delivery/ws"
	"ChatHive/internal/service"
	"ChatHive/internal/service/auth"
	"ChatHive/internal/service/chat"
	"ChatHive/internal/service/community"
	"ChatHive/internal/service/friend"
	"ChatHive/internal/service/user"
	"ChatHive/internal/storage/elastic"
	"ChatHive/internal/storage/minio_storage"
	"ChatHive/internal/storage/postgres"
	"ChatHive/internal/storage/redis_store"
	"ChatHive/pkg/logger"
)

const (
	chatFilesBucket = "chat_files"
	avatarsBucket   = "avatars"
)

func Run(cfg *config.Config) {

	log := logger.New(cfg.Env)
	log.Info("Starting with Env: " + cfg.Env)

	ctx := context.Background()

	pg, err := postgres.NewPostgresPool(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	signingKey, err := auth.LoadSigningKey(ctx, postgres.NewSignaturePostgres(pg.Pool))
	if err != nil {
		log.FatalErr("error loading signing key", err)
	}

	tokenCache, err := redis_store.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.FatalErr("error connecting to redis", err)
	}

	esClient, err := elastic.NewElasticClient(cfg.ES.Password, cfg.ES.Hosts)
	if err != nil {
		log.FatalErr("error connecting to elasticsearch", err)
	}
	userSearch := elastic.NewUserSearchRepository(esClient, cfg.ES.Index)
	if err := userSearch.CreateIndexIfNotExist(ctx); err != nil {
		log.FatalErr("error preparing user search index", err)
	}

	minioStorage, err := minio_storage.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL, cfg.Minio.Buckets)
	if err != nil {
		log.FatalErr("error connecting to minio", err)
	}
	bucket := cfg.Minio.Buckets[chatFilesBucket]
	chatFiles, err := minio_storage.NewChatFileStorage(minioStorage, bucket.Name, bucket.PresignTTL)
	if err != nil {
		log.FatalErr("error preparing chat file storage", err)
	}
	avatarBucket := cfg.Minio.Buckets[avatarsBucket]
	avatars, err := minio_storage.NewAvatarStorage(minioStorage, avatarBucket.Name, avatarBucket.PresignTTL)
	if err != nil {
		log.FatalErr("error preparing avatar storage", err)
	}

	userRepo := postgres.NewUserPostgres(pg.Pool)
	roomRepo := postgres.NewRoomPostgres(pg.Pool)
	messageRepo := postgres.NewMessagePostgres(pg.Pool)
	friendRepo := postgres.NewFriendPostgres(pg.Pool)
	communityRepo := postgres.NewCommunityPostgres(pg.Pool)

	tokenManager := auth.NewTokenManager(signingKey, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	u := service.Collection{
		AuthService:      auth.NewAuthService(log, tokenManager, userRepo, tokenCache, userSearch),
		ChatService:      chat.NewChatService(log, roomRepo, messageRepo, chatFiles, friendRepo),
		FriendService:    friend.NewFriendService(log, friendRepo, userRepo),
		CommunityService: community.NewCommunityService(log, communityRepo),
		UserService:      user.NewUserService(log, userSearch, userRepo, avatars),
	}

	hub := ws.NewHub()
	wsHandler := ws.NewHandler(log, hub, u.AuthService, u.ChatService, cfg.WS.AllowedOrigins)

	r := http.InitRoutes(log, u, cfg, wsHandler)

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal: " + s.String())
	case err := <-srv.Notify():
		log.ErrorErr("server error", err)
	}
	if err := srv.Shutdown(); err != nil {
		log.ErrorErr("shutdown error", err)
	}
}
