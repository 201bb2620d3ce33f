package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/notify"
)

func main() {
	addr := flag.String("addr", envOr("REDIS_ADDR", "localhost:6379"), "Redis address")
	password := flag.String("password", os.Getenv("REDIS_PASSWORD"), "Redis password")
	productID := flag.String("product", "", "Product ID (required)")

	flag.Parse()

	if *productID == "" {
		fmt.Fprintf(os.Stderr, "Error: -product is required\n")
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: *addr, Password: *password})
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	feed := notify.NewRedisFeed(rdb, logger)

	sub, err := feed.Subscribe(ctx, *productID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error subscribing: %v\n", err)
		os.Exit(1)
	}
	defer sub.Close()

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", notify.ChannelFor(*productID))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				fmt.Println("Feed closed")
				return
			}
			fmt.Printf("product=%s status=%s\n", ev.ProductID, ev.Status)
		case <-stop:
			return
		}
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
