// Command contact-lambda runs the relay as an AWS Lambda function behind API
// Gateway. Configuration comes from CONTACT_* environment variables.
package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/telarpress/contact-relay/internal/app"
)

func main() {
	a, err := app.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer a.Logger.Sync()

	lambda.Start(a.Function().HandleAPIGateway)
}
