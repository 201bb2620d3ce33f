package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/catalog"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/notify"
)

func main() {
	addr := flag.String("addr", envOr("REDIS_ADDR", "localhost:6379"), "Redis address")
	password := flag.String("password", os.Getenv("REDIS_PASSWORD"), "Redis password")
	productID := flag.String("product", "", "Product ID (required)")
	status := flag.String("status", "completed", "Processing status (pending, completed, failed)")
	dryRun := flag.Bool("dry-run", false, "Only print channel and payload, don't publish")

	flag.Parse()

	if *productID == "" {
		fmt.Fprintf(os.Stderr, "Error: -product is required\n")
		os.Exit(1)
	}

	ev := notify.StatusEvent{
		ProductID: *productID,
		Status:    catalog.ProcessingStatus(*status),
	}

	body, err := json.Marshal(ev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling event: %v\n", err)
		os.Exit(1)
	}

	channel := notify.ChannelFor(*productID)
	fmt.Printf("Channel: %s\n", channel)
	fmt.Printf("Payload: %s\n", string(body))

	if *dryRun {
		fmt.Println("\n[DRY RUN] Not publishing")
		return
	}

	rdb := redis.NewClient(&redis.Options{Addr: *addr, Password: *password})
	defer rdb.Close()

	ctx := context.Background()
	n, err := rdb.Publish(ctx, channel, body).Result()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error publishing: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Published to %d subscriber(s)\n", n)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
