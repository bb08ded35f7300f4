package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/studygarden/backend/internal/auth"
	"github.com/studygarden/backend/internal/database"
	"github.com/studygarden/backend/internal/garden"
	"github.com/studygarden/backend/internal/generator"
	"github.com/studygarden/backend/internal/mastery"
	"github.com/studygarden/backend/internal/middleware"
	"github.com/studygarden/backend/internal/quizzes"
	"github.com/studygarden/backend/internal/subjects"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	// Mastery parameters come from the environment but must be sane before
	// anything is served.
	masteryCfg := mastery.ConfigFromEnv()
	if err := masteryCfg.Validate(); err != nil {
		log.Fatalf("Invalid mastery configuration: %v", err)
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Stores and services
	subjectStore := subjects.NewStore(db)
	masteryStore := mastery.NewStore(db)
	masteryService := mastery.NewService(masteryStore, masteryCfg)
	gardenStore := garden.NewStore(db)
	gardenService := garden.NewService(gardenStore)
	quizStore := quizzes.NewStore(db)
	quizService := quizzes.NewService(quizStore, subjectStore, generator.NewGenerator(), masteryService, gardenService)

	// Handlers
	authHandler := auth.NewHandler(db)
	subjectHandler := subjects.NewHandler(subjectStore)
	masteryHandler := mastery.NewHandler(masteryService)
	quizHandler := quizzes.NewHandler(quizService)
	gardenHandler := garden.NewHandler(gardenStore)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/subjects", subjectHandler.CreateSubject).Methods("POST")
	protected.HandleFunc("/subjects", subjectHandler.ListSubjects).Methods("GET")
	protected.HandleFunc("/subjects/{id}", subjectHandler.GetSubject).Methods("GET")
	protected.HandleFunc("/subjects/{id}", subjectHandler.DeleteSubject).Methods("DELETE")
	protected.HandleFunc("/subjects/{id}/materials", subjectHandler.AddMaterial).Methods("POST")
	protected.HandleFunc("/subjects/{id}/materials", subjectHandler.ListMaterials).Methods("GET")

	protected.HandleFunc("/subjects/{id}/quizzes/generate", quizHandler.GenerateQuiz).Methods("POST")
	protected.HandleFunc("/subjects/{id}/quizzes", quizHandler.ListQuizzes).Methods("GET")
	protected.HandleFunc("/quizzes/{id}", quizHandler.GetQuiz).Methods("GET")
	protected.HandleFunc("/quizzes/{id}/attempts", quizHandler.StartAttempt).Methods("POST")
	protected.HandleFunc("/attempts/{id}/complete", quizHandler.CompleteAttempt).Methods("POST")

	protected.HandleFunc("/subjects/{id}/pass-chance", masteryHandler.GetPassChance).Methods("GET")
	protected.HandleFunc("/subjects/{id}/mastery", masteryHandler.GetMasteryBreakdown).Methods("GET")

	protected.HandleFunc("/garden", gardenHandler.GetGarden).Methods("GET")
	protected.HandleFunc("/garden/xp-events", gardenHandler.GetXPEvents).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
