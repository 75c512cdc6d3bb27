// @title           Task List API
// @version         1.0
// @description     A personal task-list API with model-backed task extraction
// @host            localhost:8080
// @BasePath        /

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	ghandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	"tasklist-api/config"
	"tasklist-api/db"
	_ "tasklist-api/docs"
	"tasklist-api/handlers"
	"tasklist-api/llm"
	"tasklist-api/middlewares"
	"tasklist-api/store"
	"tasklist-api/utils"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	pool, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("connected to PostgreSQL")

	var mailer *utils.Mailer
	if cfg.SMTP.Host != "" {
		mailer = utils.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender)
	}

	var cld *cloudinary.Cloudinary
	if cfg.Cloudinary.CloudName != "" {
		cld, err = cloudinary.NewFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			log.Fatalf("cloudinary init: %v", err)
		}
	}

	taskStore := store.NewPostgresTaskStore(pool)
	userStore := store.NewPostgresUserStore(pool)
	codes := store.NewActivationCache()
	extractor := llm.NewExtractor(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)

	authH := handlers.NewAuthHandler(userStore, codes, mailer, []byte(cfg.JWTSecret))
	taskH := handlers.NewTaskHandler(taskStore)
	parseH := handlers.NewParseHandler(extractor, taskStore)
	uploadH := handlers.NewUploadHandler(cld, cfg.UploadDir)
	auth := middlewares.NewAuth([]byte(cfg.JWTSecret))

	r := mux.NewRouter()
	r.HandleFunc("/healthz", healthHandler).Methods("GET")
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/signup", authH.Signup).Methods("POST")
	api.HandleFunc("/verify-email", authH.VerifyEmail).Methods("POST")
	api.HandleFunc("/login", authH.Login).Methods("POST")
	api.HandleFunc("/refresh", authH.Refresh).Methods("POST")

	api.HandleFunc("/tasks", auth.RequireAuth(taskH.List)).Methods("GET")
	api.HandleFunc("/tasks", auth.RequireAuth(taskH.Create)).Methods("POST")
	api.HandleFunc("/tasks/completed", auth.RequireAuth(taskH.ClearCompleted)).Methods("DELETE")
	api.HandleFunc("/tasks/{id}", auth.RequireAuth(taskH.Update)).Methods("PUT")
	api.HandleFunc("/tasks/{id}", auth.RequireAuth(taskH.Delete)).Methods("DELETE")
	api.HandleFunc("/parse-tasks", auth.RequireAuth(parseH.ParseTasks)).Methods("POST")
	api.HandleFunc("/upload", auth.RequireAuth(uploadH.Upload)).Methods("POST")

	cors := ghandlers.CORS(
		ghandlers.AllowedOrigins(cfg.TrustedOrigins),
		ghandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		ghandlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
	handler := ghandlers.RecoveryHandler()(
		ghandlers.LoggingHandler(os.Stdout,
			cors(middlewares.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst)(r))))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("listening on :%d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}
	log.Println("shut down gracefully")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintln(w, `{"status": "available"}`)
}
