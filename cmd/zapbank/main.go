package main

import (
	"log"

	"github.com/andymarkow/zapbank/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("app.New: %v", err)
	}

	if err := a.Run(); err != nil {
		log.Fatalf("app.Run: %v", err)
	}
}
