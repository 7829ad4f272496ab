package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port             string
	DBHost           string
	DBPort           string
	RedisHost        string
	RedisPort        string
	JaegerAddress    string
	SecretKey        string
	RazorpayKeyID    string
	RazorpaySecret   string
	CloudinaryCloud  string
	CloudinaryKey    string
	CloudinarySecret string
	CloudinaryFolder string
	SMTPHost         string
	SMTPPort         int
	SenderEmail      string
	SenderPassword   string
}

func NewConfig() *Config {
	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		smtpPort = 587
	}

	return &Config{
		Port:             os.Getenv("PORT"),
		DBHost:           os.Getenv("DB_HOST"),
		DBPort:           os.Getenv("DB_PORT"),
		RedisHost:        os.Getenv("REDIS_HOST"),
		RedisPort:        os.Getenv("REDIS_PORT"),
		JaegerAddress:    os.Getenv("JAEGER_ADDRESS"),
		SecretKey:        os.Getenv("SECRET_KEY"),
		RazorpayKeyID:    os.Getenv("RAZORPAY_KEY_ID"),
		RazorpaySecret:   os.Getenv("RAZORPAY_KEY_SECRET"),
		CloudinaryCloud:  os.Getenv("CLOUD_NAME"),
		CloudinaryKey:    os.Getenv("CLOUD_API_KEY"),
		CloudinarySecret: os.Getenv("CLOUD_API_SECRET"),
		CloudinaryFolder: os.Getenv("CLOUD_FOLDER"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         smtpPort,
		SenderEmail:      os.Getenv("SENDER_EMAIL"),
		SenderPassword:   os.Getenv("SENDER_PASSWORD"),
	}
}
