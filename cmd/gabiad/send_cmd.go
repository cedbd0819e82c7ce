// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yunseo/gabiad/internal/config"
	"github.com/yunseo/gabiad/internal/gabia"
	"github.com/yunseo/gabiad/internal/log"
	"github.com/yunseo/gabiad/internal/sms"
)

// runSendCLI implements `gabiad send`: a one-shot send straight against the
// upstream API, without the daemon or the journal.
func runSendCLI(args []string) int {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file (YAML)")
	smsType := fs.String("type", "sms", "message type: sms, lms, multi_sms, multi_lms")
	title := fs.String("title", "", "title (long messages only)")
	message := fs.String("message", "", "message body")
	to := fs.String("to", "", "comma-separated receiver phone numbers")
	at := fs.String("at", "", "scheduled time (YYYY-MM-DD HH:MM:SS), empty for immediate")
	timeout := fs.Duration("timeout", 30*time.Second, "overall timeout")
	_ = fs.Parse(args)

	log.Configure(log.Config{Level: "warn", Service: "gabiad", Version: version})

	cfg, err := config.NewLoader(*configPath, version).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}

	msg := &sms.Message{
		Key:       sms.NewKey(),
		Type:      sms.Type(*smsType),
		Title:     *title,
		Body:      *message,
		Receivers: splitReceivers(*to),
		Scheduled: *at,
	}
	if err := msg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid message: %v\n", err)
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

	res, err := client.Send(ctx, msg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
		return 1
	}

	fmt.Printf("key=%s code=%s\n", msg.Key, res.Code)
	return 0
}

func splitReceivers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
