// Command operator-token mints a bearer token for the operator API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"voice-bridge/internal/auth/processor"
	"voice-bridge/internal/observability"

	"github.com/joho/godotenv"
)

func main() {
	operator := flag.String("operator", "", "operator name recorded as the token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load("env.local"); err != nil {
			log.Printf("Warning: env.local file not found: %v", err)
		}
	}

	if *operator == "" {
		log.Fatal("-operator is required")
	}

	logger := observability.NewLogger()
	authProc := processor.New(os.Getenv("OPERATOR_JWT_SECRET"), logger)

	token, err := authProc.GenerateOperatorToken(context.Background(), *operator, *ttl)
	if err != nil {
		log.Fatalf("failed to mint token: %v", err)
	}
	fmt.Println(token)
}
