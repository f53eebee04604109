package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServicePort      string
	MetricsPort      string
	Environment      string
	PostgreSQLConfig PostgreSQLConfig
	JWTSecret        string
	MoMoConfig       MoMoConfig
	KafkaConfig      KafkaConfig
	SMTPConfig       SMTPConfig
	SchoolConfig     SchoolConfig
	TracingConfig    TracingConfig
}

type PostgreSQLConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUsername string
	DBPassword string
}

type MoMoConfig struct {
	AggregatorHost     string
	APIKey             string
	MTNMerchantCode    string
	AirtelMerchantCode string
}

type KafkaConfig struct {
	BrokerAddress   string
	BrokerTopic     string
	BrokerPartition int
}

type SMTPConfig struct {
	Host     string
	Port     int
	Sender   string
	Password string
}

type SchoolConfig struct {
	// CurrentTerm selects which fee structures count towards balances.
	CurrentTerm          int
	AccountsOfficeUserID string
	AccountsOfficeName   string
	// PendingWindowMinutes bounds how long an unconfirmed collection
	// stays PENDING before it is failed.
	PendingWindowMinutes int
}

type TracingConfig struct {
	CollectorHost string
}

func CreateNewConfig() *Config {
	godotenv.Load(".env")

	conf := Config{
		ServicePort: os.Getenv("SERVICE_PORT"),
		MetricsPort: os.Getenv("METRICS_PORT"),
		Environment: os.Getenv("ENVIRONMENT"),
		PostgreSQLConfig: PostgreSQLConfig{
			DBHost:     os.Getenv("DB_HOST"),
			DBName:     os.Getenv("DB_NAME"),
			DBPort:     os.Getenv("DB_PORT"),
			DBUsername: os.Getenv("DB_USERNAME"),
			DBPassword: os.Getenv("DB_PASSWORD"),
		},
		KafkaConfig: KafkaConfig{
			BrokerAddress:   os.Getenv("BROKER_ADDRESS"),
			BrokerTopic:     getEnvWithDefault("BROKER_TOPIC", "schoolup.payments"),
			BrokerPartition: getEnvIntWithDefault("BROKER_PARTITION", 0),
		},
		JWTSecret: os.Getenv("JWT_SECRET"),
		MoMoConfig: MoMoConfig{
			AggregatorHost:     os.Getenv("MOMO_AGGREGATOR_HOST"),
			APIKey:             os.Getenv("MOMO_AGGREGATOR_KEY"),
			MTNMerchantCode:    getEnvWithDefault("MOMO_MTN_MERCHANT_CODE", "556677"),
			AirtelMerchantCode: getEnvWithDefault("MOMO_AIRTEL_MERCHANT_CODE", "112233"),
		},
		SMTPConfig: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvIntWithDefault("SMTP_PORT", 587),
			Sender:   os.Getenv("SMTP_SENDER"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
		SchoolConfig: SchoolConfig{
			CurrentTerm:          getEnvIntWithDefault("SCHOOL_CURRENT_TERM", 1),
			AccountsOfficeUserID: getEnvWithDefault("ACCOUNTS_OFFICE_USER_ID", "admin-1"),
			AccountsOfficeName:   getEnvWithDefault("ACCOUNTS_OFFICE_NAME", "School Accounts Office"),
			PendingWindowMinutes: getEnvIntWithDefault("PENDING_WINDOW_MINUTES", 15),
		},
		TracingConfig: TracingConfig{
			CollectorHost: os.Getenv("COLLECTOR_HOST"),
		},
	}

	return &conf
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
