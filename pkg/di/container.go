package di

import (
	"time"

	"mindmate/backend/ai"
	"mindmate/backend/internal/repository"
	"mindmate/backend/internal/service"
	"mindmate/backend/pkg/cache"
	"mindmate/backend/pkg/config"
	"mindmate/backend/pkg/health"
	"mindmate/backend/pkg/jwt"
	"mindmate/backend/pkg/logger"
	"mindmate/backend/shared/redis"

	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	DB     *gorm.DB
	Config *config.Config
	Logger *logger.Logger

	JWTService *jwt.Service
	Redis      *redis.Client
	Health     *health.Checker

	UserService      *service.UserService
	CharacterService *service.CharacterService
	ChatService      *service.ChatService
	ContentService   *service.ContentService
}

// New creates a new dependency injection container. The completer is built
// by the caller because its credentials come from the secret manager.
func New(db *gorm.DB, cfg *config.Config, completer ai.Completer, log *logger.Logger) *Container {
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expiry)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(cfg.Redis.Addr)
	}

	var characterCache *cache.Cache
	if cfg.Cache.Enabled {
		characterCache = cache.New(cfg.Cache.TTL, cfg.Cache.PurgeWindow, cfg.Cache.MaxSize)
	}

	users := repository.NewGormUserRepository(db)
	characters := repository.NewGormCharacterRepository(db)
	sessions := repository.NewGormSessionRepository(db)
	messages := repository.NewGormMessageRepository(db)
	contents := repository.NewGormContentRepository(db)

	checker := health.NewChecker(log, 30*time.Second)
	checker.RegisterDatabaseCheck(func() error {
		return config.TestConnection(db)
	})

	return &Container{
		DB:         db,
		Config:     cfg,
		Logger:     log,
		JWTService: jwtService,
		Redis:      redisClient,
		Health:     checker,

		UserService:      service.NewUserService(users, jwtService),
		CharacterService: service.NewCharacterService(characters, characterCache),
		ChatService: service.NewChatService(
			sessions, messages, characters, users,
			completer, redisClient, cfg.Redis.SessionTTL, log,
		),
		ContentService: service.NewContentService(contents),
	}
}
