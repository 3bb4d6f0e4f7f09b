package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"vidtube/internal/config"
	"vidtube/internal/database"
	"vidtube/internal/middleware"
	"vidtube/internal/modules/user"
	"vidtube/internal/pkg/media"
	"vidtube/internal/pkg/token"
	"vidtube/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	issuer := token.NewIssuer(token.Config{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})

	uploader := media.NewLocalUploader(cfg.UploadDir, cfg.StaticBase)

	userService := user.NewService(userRepo, sessionRepo, issuer, uploader)
	userHandler := user.NewHandler(userService, user.CookieConfig{
		Secure:        cfg.CookieSecure,
		SameSite:      cfg.CookieSameSite,
		Path:          cfg.CookiePath,
		AccessMaxAge:  int(cfg.AccessTokenTTL.Seconds()),
		RefreshMaxAge: int(cfg.RefreshTokenTTL.Seconds()),
	})

	r := gin.Default()
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.BodyLimit(cfg.BodyLimit))
	r.Use(middleware.ErrorLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.Static(cfg.StaticBase, cfg.UploadDir)

	v1 := r.Group("/api/v1")
	{
		userHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.RequireAuth(issuer, userRepo))
		{
			userHandler.RegisterProtectedRoutes(protected)
		}
	}

	log.Printf("listening on %s", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
