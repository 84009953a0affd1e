package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lad94220/ML-Lab1/pkg/client"
)

func main() {
	fmt.Println("Connecting to Diamond Price Predictor...")
	cli, err := client.Dial("localhost:8000")
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer cli.Close()

	ctx := context.Background()
	h, err := cli.Health(ctx)
	if err != nil {
		log.Fatalf("Health failed: %v", err)
	}
	fmt.Printf("Server %s, model loaded: %v\n", h.Status, h.ModelLoaded)

	fmt.Println("Pricing 1.0ct Ideal D IF...")
	start := time.Now()
	price, err := cli.Predict(ctx, 1.0, "Ideal", "D", "IF")
	if err != nil {
		log.Fatalf("Predict failed: %v", err)
	}
	fmt.Printf("Predicted price: $%.2f (in %v)\n", price, time.Since(start))
}
