package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lad94220/ML-Lab1/pkg/client"
)

const Prompt = "diamond> "

func main() {
	serverAddr := flag.String("addr", "localhost:8000", "Diamond Price Predictor API address")
	flag.Parse()

	fmt.Printf("Diamond CLI (Target: %s)\n", *serverAddr)

	cli, err := client.Dial(*serverAddr)
	if err != nil {
		fmt.Printf("Invalid address: %v\n", err)
		return
	}
	defer cli.Close()

	info, err := cli.Info(context.Background())
	if err != nil {
		fmt.Printf("Connection failed: %v\n", err)
		fmt.Println("Tip: Ensure the server is running (e.g. go run ./cmd/server).")
		return
	}
	fmt.Printf("Connected to %s v%s (%s). Type 'help' for commands.\n", info.Message, info.Version, info.Model)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(Prompt)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])

		switch cmd {
		case "predict", "p":
			handlePredict(cli, parts)
		case "insights":
			handleInsights(cli)
		case "health":
			handleHealth(cli)
		case "help":
			printHelp()
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Printf("Unknown command: '%s'. Type 'help'.\n", cmd)
		}
	}
}

// handlePredict expects: predict <carat> <cut...> <color> <clarity>.
// The cut may span two words ("Very Good").
func handlePredict(cli *client.Client, parts []string) {
	if len(parts) < 5 {
		fmt.Println("Usage: predict <carat> <cut> <color> <clarity>")
		return
	}

	carat, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		fmt.Println("Error: carat must be a number (e.g., 0.9)")
		return
	}
	n := len(parts)
	cut := strings.Join(parts[2:n-2], " ")
	color, clarity := parts[n-2], parts[n-1]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	price, err := cli.Predict(ctx, carat, cut, color, clarity)
	duration := time.Since(start)

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("$%.2f (%v)\n", price, duration)
}

func handleInsights(cli *client.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ins, err := cli.Insights(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Scatter sample: %d points\n", len(ins.CaratData))
	fmt.Println("Average price by cut:")
	for _, c := range ins.CutData {
		fmt.Printf("  %-10s %10.2f\n", c.Cut, c.AvgPrice)
	}
	fmt.Println("Average price by color:")
	for _, c := range ins.ColorData {
		fmt.Printf("  %-10s %10.2f\n", c.Color, c.AvgPrice)
	}
	fmt.Println("Average price by clarity:")
	for _, c := range ins.ClarityData {
		fmt.Printf("  %-10s %10.2f\n", c.Clarity, c.AvgPrice)
	}
}

func handleHealth(cli *client.Client) {
	h, err := cli.Health(context.Background())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("status=%s model_loaded=%v\n", h.Status, h.ModelLoaded)
}

func printHelp() {
	fmt.Println(`
Commands:
  predict <carat> <cut> <color> <clarity>   Price a diamond (e.g. predict 1.0 Very Good D IF)
  insights                                  Dataset averages by grade
  health                                    Server and model status
  exit                                      Exit CLI
	`)
}
