package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/startup"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/startup/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on the environment")
	}

	cfg := config.NewConfig()
	server := startup.NewServer(cfg)
	server.Start()
}
