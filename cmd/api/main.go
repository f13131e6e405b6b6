package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lumen-academy/grading-api/internal/config"
	"github.com/lumen-academy/grading-api/internal/database"
	"github.com/lumen-academy/grading-api/internal/handler"
	"github.com/lumen-academy/grading-api/internal/middleware"
	"github.com/lumen-academy/grading-api/internal/models"
	"github.com/lumen-academy/grading-api/internal/repository"
	"github.com/lumen-academy/grading-api/internal/router"
	"github.com/lumen-academy/grading-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Assignment{},
		&models.AssignmentQuestion{},
		&models.AnswerEvent{},
		&models.QuestionGrade{},
		&models.Grade{},
		&models.ChatMessage{},
		&models.GradingActivity{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Warn().Err(err).Msg("grade events disabled: nats unavailable")
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	policyRepo := repository.NewPolicyRepository(db)
	answerRepo := repository.NewAnswerEventRepository(db)
	questionGradeRepo := repository.NewQuestionGradeRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	chatRepo := repository.NewChatRepository(db)
	activityRepo := repository.NewGradingActivityRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	gradingService := service.NewGradingService(policyRepo, answerRepo, questionGradeRepo, gradeRepo, chatRepo, activityService, redisClient, natsConn, validate, logger)
	gradebookService := service.NewGradebookService(questionGradeRepo, gradeRepo, redisClient, cfg.TotalCacheTTL, logger)

	gradingHandler := handler.NewGradingHandler(gradingService, userRepo, logger)
	gradebookHandler := handler.NewGradebookHandler(gradebookService, userRepo, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		GradingHandler:   gradingHandler,
		GradebookHandler: gradebookHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
