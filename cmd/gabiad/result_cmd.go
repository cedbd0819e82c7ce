// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yunseo/gabiad/internal/config"
	"github.com/yunseo/gabiad/internal/gabia"
	"github.com/yunseo/gabiad/internal/log"
)

// runResultCLI implements `gabiad result`: a one-shot delivery result lookup
// for a previously sent message key.
func runResultCLI(args []string) int {
	fs := flag.NewFlagSet("result", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file (YAML)")
	key := fs.String("key", "", "message key to look up")
	timeout := fs.Duration("timeout", 30*time.Second, "overall timeout")
	_ = fs.Parse(args)

	if *key == "" {
		fmt.Fprintln(os.Stderr, "usage: gabiad result -key <message-key>")
		return 2
	}

	log.Configure(log.Config{Level: "warn", Service: "gabiad", Version: version})

	cfg, err := config.NewLoader(*configPath, version).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}

	client := gabia.New(gabia.Config{
		APIURL:  cfg.APIURL,
		APIID:   cfg.APIID,
		APIKey:  cfg.APIKey,
		Sender:  cfg.Sender,
		Timeout: cfg.UpstreamTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := client.Result(ctx, *key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "result lookup failed: %v\n", err)
		return 1
	}

	status := "failed"
	if res.Success() {
		status = "delivered"
	}
	fmt.Printf("key=%s code=%s status=%s\n", *key, res.Code, status)
	return 0
}
