// config/config.go
package config

import (
	"log"
	"os"
	"time"
)

type Config struct {
	Port          string
	MongoURI      string
	DBName        string
	JWTKey        []byte
	JWTExpiration time.Duration
	StripeKey     string
}

func Load() Config {
	cfg := Config{
		Port:      os.Getenv("PORT"),
		MongoURI:  os.Getenv("MONGODB_URI"),
		DBName:    os.Getenv("DB_NAME"),
		JWTKey:    []byte(os.Getenv("JWT_SECRET")),
		StripeKey: os.Getenv("STRIPE_SECRET_KEY"),
	}

	if cfg.Port == "" {
		cfg.Port = "5000"
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = "mongodb://localhost:27017"
	}
	if cfg.DBName == "" {
		cfg.DBName = "assetManagementDB"
	}
	if len(cfg.JWTKey) == 0 {
		log.Println("JWT_SECRET not set, using development key")
		cfg.JWTKey = []byte("secret")
	}

	cfg.JWTExpiration = 24 * time.Hour
	if expireStr := os.Getenv("JWT_EXPIRE"); expireStr != "" {
		dur, err := time.ParseDuration(expireStr)
		if err != nil {
			log.Printf("Invalid JWT_EXPIRE: %s, using 24h", expireStr)
		} else {
			cfg.JWTExpiration = dur
		}
	}

	return cfg
}
