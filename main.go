package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"exam-service/internal/db"
	"exam-service/internal/event"
	"exam-service/internal/handlers"
	"exam-service/internal/repository"
	"exam-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI is required")
	}
	db.InitMongo(mongoURI)

	// RabbitMQ event publisher
	rabbitURL := os.Getenv("RABBITMQ_URI")
	eventExchange := os.Getenv("RABBITMQ_EXCHANGE")
	var publisher *event.EventPublisher
	if rabbitURL != "" && eventExchange != "" {
		var err error
		publisher, err = event.NewEventPublisher(rabbitURL, eventExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, attempt events will not be published")
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	mongoClient := db.Client
	database := mongoClient.Database("exam_service")

	// Series definitions (authored elsewhere, read-only here)
	seriesRepo := repository.NewSeriesRepository(database)
	seriesService := service.NewSeriesService(seriesRepo)
	seriesHandler := handlers.NewSeriesHandler(seriesService)

	// Question bank lookup, used only at snapshot-build time
	questionRepo := repository.NewQuestionRepository(database)

	// Attempt lifecycle
	attemptRepo := repository.NewAttemptRepository(database)
	counterRepo := repository.NewCounterRepository(database)
	attemptService := service.NewAttemptService(attemptRepo, counterRepo, seriesRepo, questionRepo)
	if publisher != nil {
		attemptService.OnExpire = func(attemptID string) {
			publisher.PublishAttempt(event.AttemptExpired, event.AttemptEvent{AttemptID: attemptID})
		}
	}
	attemptHandler := handlers.NewAttemptHandler(attemptService)

	// Leaderboard
	leaderboardService := service.NewLeaderboardService(attemptRepo)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)

	publicSeries := r.Group("/public/exam/series")
	{
		publicSeries.GET("/", seriesHandler.ListSeries)
		publicSeries.GET("/:id", seriesHandler.GetSeries)
	}

	publicLeaderboard := r.Group("/public/exam/leaderboard")
	{
		publicLeaderboard.GET("/:seriesId", func(c *gin.Context) {
			leaderboardHandler.GetLeaderboard(c)
			if publisher != nil {
				publisher.Publish("exam.leaderboard.viewed", gin.H{"series_id": c.Param("seriesId")})
			}
		})
	}

	publicUser := r.Group("/public/exam/user")
	{
		publicUser.GET("/:id/attempts", attemptHandler.GetAttemptsByStudent)
	}

	setupAttemptRoutes(r, attemptHandler, publisher)

	port := os.Getenv("PORT")
	if port == "" {
		port = "6680"
	}
	r.Run(":" + port)
}

func setupAttemptRoutes(r *gin.Engine, attemptHandler *handlers.AttemptHandler, publisher *event.EventPublisher) {
	protectedAttempt := r.Group("/protected/exam/attempt")

	// Authentication middleware: the gateway injects the student identity,
	// this service trusts it.
	protectedAttempt.Use(func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		c.Next()
	})

	protectedAttempt.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[ATTEMPT] %v | %3d | %13v | %15s | %-7s %#v\n%s",
			param.TimeStamp.Format("2006/01/02 - 15:04:05"),
			param.StatusCode,
			param.Latency,
			param.ClientIP,
			param.Method,
			param.Path,
			param.ErrorMessage,
		)
	}))

	{
		// Start a new timed attempt on a series
		protectedAttempt.POST("/", func(c *gin.Context) {
			attemptHandler.StartAttempt(c)
			if publisher != nil && c.Writer.Status() == http.StatusCreated {
				publisher.PublishAttempt(event.AttemptStarted, event.AttemptEvent{
					StudentID: c.GetHeader("X-User-ID"),
				})
			}
		})

		// Resume: fetch the in-progress attempt for a series
		protectedAttempt.GET("/progress", attemptHandler.GetProgress)

		// Attempt status with lazy expiry
		protectedAttempt.GET("/:id", attemptHandler.GetAttempt)

		// Periodic/manual progress save
		protectedAttempt.PUT("/:id/progress", func(c *gin.Context) {
			attemptHandler.SaveProgress(c)
			if publisher != nil && c.Writer.Status() == http.StatusOK {
				publisher.PublishAttempt(event.ProgressSaved, event.AttemptEvent{
					AttemptID: c.Param("id"),
					StudentID: c.GetHeader("X-User-ID"),
				})
			}
		})

		// Final submission and scoring
		protectedAttempt.POST("/:id/submit", func(c *gin.Context) {
			attemptHandler.SubmitAttempt(c)
			if publisher != nil && c.Writer.Status() == http.StatusOK {
				publisher.PublishAttempt(event.AttemptSubmitted, event.AttemptEvent{
					AttemptID: c.Param("id"),
					StudentID: c.GetHeader("X-User-ID"),
				})
			}
		})
	}
}
