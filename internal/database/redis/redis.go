package redis

import (
	"context"
	"log"

	"quizhub-service/internal/config"

	"github.com/redis/go-redis/v9"
)

var Redis_Client *redis.Client

func init() {
	cfg := config.ServiceConfig.Redis
	Redis_Client = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := Redis_Client.Ping(context.Background()).Err(); err != nil {
		log.Printf("Warning: could not connect to Redis: %s", err)
	} else {
		log.Println("Successfully connected to Redis")
	}
}
