package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"notetaker/config"
	"notetaker/handler"
	"notetaker/llm"
	"notetaker/middleware"
	"notetaker/pkg/logger"
	"notetaker/storage"
	"notetaker/usecase"
)

func setupRouter(store storage.Store, notesService *usecase.NotesService, usersService *usecase.UsersService) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware())

	router.GET("/health", func(c *gin.Context) {
		handler.HealthHandler(c, store)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		notes := api.Group("/notes")
		{
			notes.GET("", func(c *gin.Context) { handler.ListNotesHandler(c, notesService) })
			notes.POST("", func(c *gin.Context) { handler.CreateNoteHandler(c, notesService) })
			notes.GET("/search", func(c *gin.Context) { handler.SearchNotesHandler(c, notesService) })
			notes.POST("/generate", func(c *gin.Context) { handler.GenerateNoteHandler(c, notesService) })
			notes.GET("/:id", func(c *gin.Context) { handler.GetNoteHandler(c, notesService) })
			notes.PUT("/:id", func(c *gin.Context) { handler.UpdateNoteHandler(c, notesService) })
			notes.DELETE("/:id", func(c *gin.Context) { handler.DeleteNoteHandler(c, notesService) })
			notes.POST("/:id/translate", func(c *gin.Context) { handler.TranslateNoteHandler(c, notesService) })
		}

		users := api.Group("/users")
		{
			users.GET("", func(c *gin.Context) { handler.ListUsersHandler(c, usersService) })
			users.POST("", func(c *gin.Context) { handler.CreateUserHandler(c, usersService) })
			users.GET("/:id", func(c *gin.Context) { handler.GetUserHandler(c, usersService) })
			users.PUT("/:id", func(c *gin.Context) { handler.UpdateUserHandler(c, usersService) })
			users.DELETE("/:id", func(c *gin.Context) { handler.DeleteUserHandler(c, usersService) })
		}
	}

	return router
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment variables")
	}
	logger.Init()
	defer logger.Log.Sync()

	cfg := config.Load()

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Sugar.Fatalf("failed to open store: %v", err)
	}
	defer store.Close(ctx)
	logger.Sugar.Infow("store ready", "backend", store.Name())

	var translator llm.Translator
	var generator llm.Generator
	if client, err := llm.NewClient(cfg.LLM); err != nil {
		logger.Sugar.Warnw("LLM features disabled", "err", err)
	} else {
		translator = client
		generator = client
	}

	notesService := usecase.NewNotesService(store, translator, generator)
	usersService := usecase.NewUsersService(store, cfg.Users.EnforceUnique)

	router := setupRouter(store, notesService, usersService)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Sugar.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar.Errorf("forced shutdown: %v", err)
	}
}
