package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tharos-ai/superintendent-go/internal/action"
	"github.com/tharos-ai/superintendent-go/internal/backend"
	"github.com/tharos-ai/superintendent-go/internal/config"
	"github.com/tharos-ai/superintendent-go/internal/device"
	"github.com/tharos-ai/superintendent-go/internal/logger"
	"github.com/tharos-ai/superintendent-go/internal/session"
	"github.com/tharos-ai/superintendent-go/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Log.Level)

	kv := store.Open(cfg.Store.Path)
	defer func() {
		if err := kv.Close(); err != nil {
			logger.L.Warn("store close error", "error", err)
		}
	}()

	caps := device.None()
	for _, bridgeCfg := range cfg.DeviceBridge {
		bridge, err := device.NewBridge(bridgeCfg)
		if err != nil {
			logger.L.Error("device bridge unavailable", "name", bridgeCfg.Name, "error", err)
			continue
		}
		defer func() {
			if err := bridge.Close(); err != nil {
				logger.L.Warn("device bridge close error", "error", err)
			}
		}()
		caps = bridge.Capabilities()
		break // first working bridge wins
	}

	apiClient := backend.NewClient(cfg.Backend)
	executor := action.NewExecutor(caps)
	sess := session.New(apiClient, executor, kv, cfg)

	ctx := context.Background()
	sess.Restore(ctx)

	for _, msg := range sess.Messages() {
		printMessage(msg)
	}
	fmt.Printf("[%s] ready. /personality toggles persona, /reset starts over, /quit exits.\n", sess.Personality())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return
		case "/reset":
			sess.Reset()
			fmt.Println("conversation cleared")
			continue
		case "/personality":
			fmt.Printf("personality is now %s\n", sess.TogglePersonality(ctx))
			continue
		case "/history":
			for _, msg := range sess.Messages() {
				printMessage(msg)
			}
			continue
		}

		replies, err := sess.Submit(ctx, line)
		if err != nil {
			fmt.Printf("error: %s\n", sess.Err())
			continue
		}
		for _, msg := range replies {
			printMessage(msg)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.L.Error("stdin read error", "error", err)
	}
}

func printMessage(msg backend.Message) {
	prefix := msg.Role
	if msg.Role == backend.RoleAssistant && msg.ModelUsed != "" {
		prefix = fmt.Sprintf("%s (%s)", msg.Role, msg.ModelUsed)
	}
	fmt.Printf("%s: %s\n", prefix, msg.Content)
}
