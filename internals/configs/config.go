package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	JWTSecret         string
	MidtransServerKey string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("[CONFIG] no .env file, using system ENV")
		}
	}

	JWTSecret = GetEnv("JWT_SECRET")
	MidtransServerKey = GetEnv("MIDTRANS_SERVER_KEY")

	if JWTSecret == "" {
		log.Println("[CONFIG] JWT_SECRET is not set")
	}
	if MidtransServerKey == "" {
		log.Println("[CONFIG] MIDTRANS_SERVER_KEY is not set")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func GetEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// =======================
// SCHEDULER CONFIG
// =======================

// SchedulerConfig holds the cadence and kill switches of the periodic jobs.
// Cron expressions are offset a few minutes apart to spread load; the jobs
// carry no ordering dependency on each other.
type SchedulerConfig struct {
	SessionDeadlineCron  string
	PaymentDeadlineCron  string
	StatusRollCron       string
	SessionDeadlineOn    bool
	PaymentDeadlineOn    bool
	StatusRollOn         bool
	SessionDeadlineHours int
	PaymentDeadlineHours int
}

func LoadSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		SessionDeadlineCron:  GetEnv("SESSION_DEADLINE_CRON", "*/10 * * * *"),
		PaymentDeadlineCron:  GetEnv("PAYMENT_DEADLINE_CRON", "3-59/10 * * * *"),
		StatusRollCron:       GetEnv("STATUS_ROLL_CRON", "6-59/10 * * * *"),
		SessionDeadlineOn:    GetEnvBool("SESSION_DEADLINE_ENABLED", true),
		PaymentDeadlineOn:    GetEnvBool("PAYMENT_DEADLINE_ENABLED", true),
		StatusRollOn:         GetEnvBool("STATUS_ROLL_ENABLED", true),
		SessionDeadlineHours: GetEnvInt("SESSION_DEADLINE_HOURS", 24),
		PaymentDeadlineHours: GetEnvInt("PAYMENT_DEADLINE_HOURS", 24),
	}
}
