package main

import (
	"log"

	"github.com/tech-arch1tect/sparkauth/app"
)

func main() {
	a, err := app.NewApp().WithAutoConfig().Build()
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}

	if err := a.Run(); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}
