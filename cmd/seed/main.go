package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"warbler/internal/auth"
	"warbler/internal/cache"
	"warbler/internal/config"
	"warbler/internal/db"
	apperrors "warbler/internal/errors"
	"warbler/internal/model"
	"warbler/internal/repository"
	"warbler/internal/service"
)

func main() {
	users := flag.Int("users", 50, "number of users to sign up")
	messages := flag.Int("messages", 5, "messages posted per user")
	follows := flag.Int("follows", 10, "follow edges created per user")
	password := flag.String("password", "password", "password given to every seeded user")
	seed := flag.Int64("seed", 0, "random seed, 0 picks one")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	log.Info().Msg("Starting seed script...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN, cfg.DBLogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	log.Info().Msg("Database migrations completed")

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	userRepo := repository.NewUserRepository(gormDB)
	messageRepo := repository.NewMessageRepository(gormDB)
	authService, err := service.NewAuthService(
		userRepo,
		auth.NewTokenService(cfg.SessionSecret, cfg.SessionTTL),
		auth.NewSessionStore(cacheClient, cfg.SessionTTL),
		service.NewCredentialValidator(),
		service.AuthOptions{
			BcryptCost:            cfg.BcryptCost,
			DefaultImageURL:       cfg.DefaultImageURL,
			DefaultHeaderImageURL: cfg.DefaultHeaderImageURL,
		},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth service")
	}
	messageService := service.NewMessageService(messageRepo)
	followService := service.NewFollowService(userRepo, repository.NewFollowsRepository(gormDB))

	faker := gofakeit.New(*seed)
	ctx := context.Background()
	start := time.Now()

	created := make([]*model.User, 0, *users)
	for i := 0; i < *users; i++ {
		u, err := authService.Signup(ctx, service.SignupInput{
			Username: fakeUsername(faker),
			Email:    faker.Email(),
			Password: *password,
			ImageURL: faker.ImageURL(200, 200),
		})
		if errors.Is(err, apperrors.ErrConstraintViolation) {
			log.Warn().Msg("Skipping user that collides with an existing one")
			continue
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to sign up user")
		}
		created = append(created, u)
	}
	log.Info().Int("count", len(created)).Msg("Users created")

	posted := 0
	for _, u := range created {
		actorCtx := auth.WithActor(ctx, auth.Actor{UserID: u.ID})
		for j := 0; j < *messages; j++ {
			if _, err := messageService.Create(actorCtx, fakeMessage(faker)); err != nil {
				log.Fatal().Err(err).Uint("user_id", u.ID).Msg("Failed to post message")
			}
			posted++
		}
	}
	log.Info().Int("count", posted).Msg("Messages posted")

	edges := 0
	if len(created) > 1 {
		for _, u := range created {
			actorCtx := auth.WithActor(ctx, auth.Actor{UserID: u.ID})
			for j := 0; j < *follows; j++ {
				target := created[faker.IntRange(0, len(created)-1)]
				if target.ID == u.ID {
					continue
				}
				if err := followService.Follow(actorCtx, target.ID); err != nil {
					log.Fatal().Err(err).Uint("user_id", u.ID).Msg("Failed to follow user")
				}
				edges++
			}
		}
	}
	log.Info().Int("count", edges).Msg("Follow actions applied")

	log.Info().Dur("elapsed", time.Since(start)).Msg("Seed completed successfully")
}

func fakeUsername(f *gofakeit.Faker) string {
	name := f.Username()
	if len(name) > 30 {
		name = name[:30]
	}
	return name
}

func fakeMessage(f *gofakeit.Faker) string {
	text := []rune(f.Sentence(f.IntRange(3, 14)))
	if len(text) > model.MaxMessageLength {
		text = text[:model.MaxMessageLength]
	}
	return string(text)
}
