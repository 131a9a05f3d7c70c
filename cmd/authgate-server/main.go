// Command authgate-server runs the authentication engine behind an HTTP
// API. Configuration comes from the environment; a local .env file is
// loaded when present.
//
//	JWT_SECRET    hs256 signing secret, at least 32 bytes (required)
//	REDIS_ADDR    Redis address (default "localhost:6379")
//	PORT          listen port (default "8080")
//	TOTP_ISSUER   issuer label shown in authenticator apps (default "authgate")
//	ALLOW_ORIGIN  CORS origin; empty disables CORS headers
package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	authgate "github.com/kesparza-dev/authgate"
	"github.com/kesparza-dev/authgate/httpapi"
	"github.com/kesparza-dev/authgate/store/redisstore"
)

func main() {
	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET")
	if len(secret) < 32 {
		log.Fatal("JWT_SECRET must be set to at least 32 bytes")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: envOr("REDIS_ADDR", "localhost:6379"),
	})
	defer redisClient.Close()

	cfg := authgate.DefaultConfig()
	cfg.JWT.Secret = []byte(secret)
	cfg.JWT.Issuer = envOr("TOTP_ISSUER", "authgate")
	cfg.TOTP.Issuer = envOr("TOTP_ISSUER", "authgate")
	cfg.Metrics.Enabled = true

	engine, err := authgate.New().
		WithConfig(cfg).
		WithRedis(redisClient).
		WithCredentialStore(redisstore.New(redisClient)).
		WithAuditSink(authgate.NewJSONWriterSink(os.Stdout)).
		Build()
	if err != nil {
		log.Fatalf("engine init: %v", err)
	}
	defer engine.Close()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := httpapi.NewServer(engine, httpapi.Config{
		AllowOrigin: os.Getenv("ALLOW_ORIGIN"),
	})

	addr := ":" + envOr("PORT", "8080")
	log.Printf("listening on %s", addr)
	if err := server.Router().Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
