package bot

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"BukuBot/internal/session"
)

// RunCLI starts the interactive terminal chat. It is the terminal-mode
// counterpart of the web UI: same turn handling, same control actions.
func (b *Bot) RunCLI() error {
	sess := session.New(uuid.NewString())

	fmt.Println("=== BukuBot Bazar 2025 ===")
	fmt.Println("Type /help for commands, /quit to exit")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldQuit, err := b.handleCommand(ctx, sess, input)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
			}
			if shouldQuit {
				break
			}
			continue
		}

		reply, err := b.Turn(ctx, sess, input)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		fmt.Printf("Bot: %s\n\n", reply)
	}

	fmt.Println("Goodbye!")
	return nil
}

// handleCommand handles the /-prefixed control actions.
func (b *Bot) handleCommand(ctx context.Context, sess *session.Session, cmd string) (bool, error) {
	switch strings.Fields(cmd)[0] {
	case "/quit", "/exit":
		return true, nil

	case "/clear":
		sess.Clear()
		fmt.Println("Chat cleared.")
		return false, nil

	case "/reload":
		cat, err := b.Reload(ctx)
		if err != nil {
			return false, err
		}
		fmt.Printf("Catalog reloaded: %d books\n", len(cat))
		return false, nil

	case "/stats":
		cat, err := b.Catalog()
		if err != nil {
			return false, err
		}
		fmt.Printf("Messages: %d  Orders: %d  Catalog: %d books\n",
			sess.Len(), sess.Orders, len(cat))
		return false, nil

	case "/catalog":
		cat, err := b.Catalog()
		if err != nil {
			return false, err
		}
		for _, entry := range cat {
			warn := ""
			if entry.Stock < b.cfg.LowStockThreshold {
				warn = "  (low stock!)"
			}
			fmt.Printf("  %s | Rp %.0f -> Rp %.0f | stock %d%s\n",
				entry.Title, entry.NormalPrice, entry.DiscountPrice, entry.Stock, warn)
		}
		return false, nil

	case "/help":
		fmt.Println("Available commands:")
		fmt.Println("  /quit, /exit  - Exit the chat")
		fmt.Println("  /clear        - Clear the conversation")
		fmt.Println("  /reload       - Reload the catalog and recompose the prompt")
		fmt.Println("  /catalog      - List the catalog")
		fmt.Println("  /stats        - Show message, order, and catalog counts")
		fmt.Println("  /help         - Show this help message")
		return false, nil

	default:
		return false, fmt.Errorf("unknown command: %s", cmd)
	}
}
