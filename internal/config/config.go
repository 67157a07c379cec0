package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	ServiceConfig = Load()
}

var ServiceConfig *Config

type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Consul   ConsulConfig
	Quiz     QuizConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	ServiceName    string
	ServiceAddress string
	ServiceID      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	LogDir         string
	AllowedOrigins []string
}

type ConsulConfig struct {
	ConsulAddress string
	Enabled       bool
}

type MongoDBConfig struct {
	URI      string
	Database string
	PoolSize uint64
	Timeout  time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	CacheTTL time.Duration
}

type RabbitMQConfig struct {
	URI       string
	Exchange  string
	QueueName string
}

type QuizConfig struct {
	// Extra window granted past a quiz's time limit before a
	// submission is rejected as late.
	GracePeriod time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "6660"),
			Host:           getEnv("HOST", "0.0.0.0"),
			ServiceName:    getEnv("QUIZHUB_SERVICE_NAME", "quizhub-service"),
			ServiceAddress: getEnv("QUIZHUB_SERVICE_ADDRESS", "quizhub-service"),
			ServiceID:      getEnv("QUIZHUB_SERVICE_NAME", "quizhub-service") + "-" + getEnv("HOSTNAME", "quizhub"),
			ReadTimeout:    getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
			LogDir:         getEnv("LOG_DIR", "log/quizhub_service"),
			AllowedOrigins: []string{getEnv("CORS_ORIGIN", "http://localhost:3000")},
		},
		Consul: ConsulConfig{
			ConsulAddress: getEnv("CONSUL_ADDR", "consul-server:8500"),
			Enabled:       getEnvAsBool("CONSUL_ENABLED", false),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "quizhub_service"),
			PoolSize: getEnvAsUint64("MONGODB_POOL_SIZE", 100),
			Timeout:  getEnvAsDuration("MONGODB_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("REDIS_CACHE_TTL", 15*time.Minute),
		},
		RabbitMQ: RabbitMQConfig{
			URI:       getEnv("RABBITMQ_URI", ""),
			Exchange:  getEnv("RABBITMQ_EXCHANGE", "quiz.events"),
			QueueName: getEnv("RABBITMQ_QUEUE", "quizhub-service-events"),
		},
		Quiz: QuizConfig{
			GracePeriod: getEnvAsDuration("QUIZ_GRACE_PERIOD", 30*time.Second),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("error retrieve int env var %s: %s", key, err)
			return defaultValue
		}
		return intVal
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value, exists := os.LookupEnv(key); exists {
		uintVal, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			log.Printf("error retrieve uint env var %s: %s", key, err)
			return defaultValue
		}
		return uintVal
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("error retrieve bool env var %s: %s", key, err)
			return defaultValue
		}
		return boolVal
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err != nil {
			log.Printf("error retrieve duration env var %s: %s", key, err)
			return defaultValue
		}
		return d
	}
	return defaultValue
}
