package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"classquiz/internal/apperror"
	"classquiz/internal/attempt"
	"classquiz/internal/auth"
	"classquiz/internal/class"
	"classquiz/internal/models"
	"classquiz/internal/quiz"
	"classquiz/pkg/cache"
	"classquiz/pkg/database"
	"classquiz/pkg/live"

	"github.com/gorilla/mux"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	// Initialize database
	dbConfig := &database.Config{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
	}

	db, err := database.NewPostgresDB(dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.Teacher{},
		&models.Student{},
		&models.Class{},
		&models.Quiz{},
		&models.Question{},
		&models.QuestionAnswer{},
		&models.StudentQuizAttempt{},
		&models.StudentAnswer{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize Redis cache
	redisCache := cache.NewRedisCache(os.Getenv("REDIS_ADDR"))

	// Initialize the live feed hub
	hub := live.NewHub()
	go hub.Run()

	// Initialize repositories
	authRepo := auth.NewRepository(db)
	quizRepo := quiz.NewRepository(db)
	attemptRepo := attempt.NewRepository(db)
	classRepo := class.NewRepository(db)

	// Initialize services
	jwtSecret := os.Getenv("JWT_SECRET")
	authService := auth.NewService(authRepo, jwtSecret)
	quizService := quiz.NewService(quizRepo, redisCache)
	attemptService := attempt.NewService(attemptRepo, hub)
	classService := class.NewService(classRepo)

	// Only staff who can see the quiz may watch its attempt feed.
	hub.SetAuthorizer(func(user *models.User, quizID uint) error {
		if user.Role == models.RoleStudent {
			return apperror.Forbidden("You are not authorized")
		}
		_, err := quizService.GetQuiz(user, quizID)
		return err
	})

	// Initialize handlers
	authHandler := auth.NewHandler(authService)
	quizHandler := quiz.NewHandler(quizService)
	attemptHandler := attempt.NewHandler(attemptService)
	classHandler := class.NewHandler(classService)

	// Setup router
	router := mux.NewRouter()

	// CORS middleware configuration
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	handler := corsMiddleware.Handler(router)

	// Auth routes - no JWT required
	router.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Everything below requires a valid token
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(auth.JWTMiddleware(jwtSecret, authService))

	// User administration - admin only
	adminRouter := apiRouter.PathPrefix("").Subrouter()
	adminRouter.Use(auth.RequireAdmin)
	adminRouter.HandleFunc("/users/pending", authHandler.ListPendingUsers).Methods("GET")
	adminRouter.HandleFunc("/users/{userId}/status", authHandler.UpdateUserStatus).Methods("PATCH", "OPTIONS")
	adminRouter.HandleFunc("/users/{userId}/status/reset", authHandler.ResetUserStatus).Methods("PATCH", "OPTIONS")

	// Class management - admin only except reads
	adminRouter.HandleFunc("/classes", classHandler.CreateClass).Methods("POST", "OPTIONS")
	adminRouter.HandleFunc("/classes", classHandler.ListClasses).Methods("GET")
	adminRouter.HandleFunc("/classes/{classId}", classHandler.DeleteClass).Methods("DELETE", "OPTIONS")
	adminRouter.HandleFunc("/classes/{classId}/teachers/{teacherId}", classHandler.AssignTeacher).Methods("POST", "OPTIONS")
	adminRouter.HandleFunc("/classes/{classId}/teachers/{teacherId}", classHandler.UnassignTeacher).Methods("DELETE", "OPTIONS")
	adminRouter.HandleFunc("/classes/{classId}/students/{studentId}", classHandler.AssignStudent).Methods("POST", "OPTIONS")
	adminRouter.HandleFunc("/classes/{classId}/students/{studentId}", classHandler.UnassignStudent).Methods("DELETE", "OPTIONS")
	apiRouter.HandleFunc("/classes/{classId}", classHandler.GetClass).Methods("GET")

	// Quiz routes
	apiRouter.HandleFunc("/quizzes", quizHandler.CreateQuiz).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/quizzes", quizHandler.ListQuizzes).Methods("GET")
	apiRouter.HandleFunc("/quizzes/public", quizHandler.ListPublicQuizzes).Methods("GET")
	apiRouter.HandleFunc("/quizzes/{quizId}", quizHandler.GetQuiz).Methods("GET")
	apiRouter.HandleFunc("/quizzes/{quizId}", quizHandler.UpdateQuiz).Methods("PUT", "OPTIONS")
	apiRouter.HandleFunc("/quizzes/{quizId}", quizHandler.DeleteQuiz).Methods("DELETE", "OPTIONS")
	apiRouter.HandleFunc("/quizzes/{quizId}/classes/{classId}", quizHandler.AssignQuizToClass).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/quizzes/{quizId}/classes/{classId}", quizHandler.UnassignQuizFromClass).Methods("DELETE", "OPTIONS")
	apiRouter.HandleFunc("/quizzes/{quizId}/questions", quizHandler.CreateQuestion).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/quizzes/{quizId}/questions", quizHandler.ListQuizQuestions).Methods("GET")
	apiRouter.HandleFunc("/questions/{questionId}", quizHandler.UpdateQuestion).Methods("PUT", "OPTIONS")
	apiRouter.HandleFunc("/questions/{questionId}", quizHandler.DeleteQuestion).Methods("DELETE", "OPTIONS")
	apiRouter.HandleFunc("/questions/{questionId}/answers", quizHandler.CreateAnswer).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/answers/{answerId}", quizHandler.UpdateAnswer).Methods("PUT", "OPTIONS")
	apiRouter.HandleFunc("/answers/{answerId}", quizHandler.DeleteAnswer).Methods("DELETE", "OPTIONS")

	// Attempt routes
	apiRouter.HandleFunc("/attempts", attemptHandler.Start).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/attempts/answers", attemptHandler.SubmitAnswer).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/attempts/answers", attemptHandler.UpdateAnswer).Methods("PUT", "OPTIONS")
	apiRouter.HandleFunc("/attempts/complete", attemptHandler.Complete).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/attempts/quiz/{quizId}", attemptHandler.ListForQuiz).Methods("GET")
	apiRouter.HandleFunc("/attempts/student/{studentId}", attemptHandler.ListForStudent).Methods("GET")
	apiRouter.HandleFunc("/attempts/{attemptId}/answers", attemptHandler.ListAnswers).Methods("GET")
	apiRouter.HandleFunc("/attempts/{attemptId}", attemptHandler.Delete).Methods("DELETE", "OPTIONS")

	// Live attempt feed
	apiRouter.HandleFunc("/ws/quizzes/{quizId}", hub.HandleWebSocket)

	// Setup server with CORS handler
	srv := &http.Server{
		Addr:         ":8080",
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port 8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown setup
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server shutdown gracefully")
}
