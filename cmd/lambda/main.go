package main

import (
	"log"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"line-of-credit/internal/adapter/lambda"
	"line-of-credit/internal/app"
	"line-of-credit/internal/config"
)

func main() {
	// built once per cold start and reused by every invocation; lambda.Start never
	// returns, so the DB and Redis pools live as long as the execution environment
	a, err := app.New(config.Load())
	if err != nil {
		log.Fatal(err)
	}

	awslambda.Start(lambda.NewProxy(a.Echo).Handle)
}
