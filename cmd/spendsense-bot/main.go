package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"spendsense/internal/chatbot"
	"spendsense/internal/cli"
	"spendsense/internal/client"
	"spendsense/internal/session"
	"spendsense/internal/store"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	// With API_BASE_URL set the REPL talks to a running server; otherwise it
	// opens the local store directly.
	var st store.Store
	closeStore := func() {}
	if cfg.APIBaseURL != "" {
		st = client.New(cfg.APIBaseURL)
		logger.Info("Using remote expense API", "base_url", cfg.APIBaseURL)
	} else {
		st, closeStore = cli.InitStore(logger, cfg)
	}
	defer closeStore()

	ctx := context.Background()
	sess := session.New(st, nil)
	if err := sess.Refresh(ctx); err != nil {
		logger.Error("Initial cache load failed", "error", err)
		os.Exit(1)
	}

	bot := chatbot.New(sess)

	fmt.Println(chatbot.Greeting)
	fmt.Printf("Try: %s\n", strings.Join(chatbot.SuggestedCommands, " | "))
	fmt.Println("Type 'quit' to exit.")

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
		if line == "quit" || line == "exit" {
			break
		}

		res, err := bot.Interpret(ctx, line)
		if err != nil {
			fmt.Println("Something went wrong:", err)
			continue
		}
		for _, out := range res.Lines() {
			fmt.Println(out)
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Error("Reading input failed", "error", err)
		os.Exit(1)
	}
	fmt.Println("Bye!")
}
