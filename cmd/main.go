package main

import (
	"log"
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/joho/godotenv"
	_ "github.com/servicly/functions"
)

const defaultPort = "8082"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using the environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	log.Println("Started on port " + port)
	if err := funcframework.Start(port); err != nil {
		log.Fatalf("funcframework.Start: %v\n", err)
	}
	log.Println("Done")
}
