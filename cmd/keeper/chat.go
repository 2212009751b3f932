package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/keeperhq/keeper/internal/answer"
	"github.com/keeperhq/keeper/internal/common"
	"github.com/keeperhq/keeper/internal/config"
	"github.com/keeperhq/keeper/internal/dialogue"
	"github.com/keeperhq/keeper/internal/embedding"
	"github.com/keeperhq/keeper/internal/intent"
	"github.com/keeperhq/keeper/internal/llm"
	"github.com/keeperhq/keeper/internal/resolve"
	"github.com/spf13/cobra"
)

func chatCmd() *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to keeper",
		Long: `Start an interactive conversation. Type what you want done:

  add a task to call the dentist tomorrow
  transfer 50 from checking to savings
  what did I write about the garden last week?

Type 'exit' or press Ctrl-D to leave.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			settings := config.Load()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			client, err := llm.NewClient(llm.Config{
				Provider: settings.LLMProvider,
				APIKey:   settings.LLMAPIKey,
				Model:    settings.LLMModel,
			})
			if err != nil {
				return fmt.Errorf("failed to create LLM client: %w", err)
			}

			embedder, err := embedding.NewEngine(embedding.Config{
				Provider:       settings.EmbeddingProvider,
				OllamaEndpoint: settings.OllamaEndpoint,
				OllamaModel:    settings.OllamaModel,
			})
			if err != nil {
				return fmt.Errorf("failed to create embedding engine: %w", err)
			}
			slog.Debug("Embedding engine ready", "engine", embedder.Name())

			executor := intent.NewExecutor(store, resolve.NewContainment(),
				intent.WithEmbedder(embedder),
				intent.WithNotifier(common.LogNotifier{}))
			answerer := answer.New(embedder, store, client)
			manager := dialogue.NewManager(store, client, executor, answerer)

			sess := dialogue.NewSession()
			if session != "" {
				sess = dialogue.NewSessionWithID(session)
			}

			return runChat(cmd, manager, sess)
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "resume or name a conversation session")

	return cmd
}

func runChat(cmd *cobra.Command, manager *dialogue.Manager, sess *dialogue.Session) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "keeper ready. Type 'exit' to leave.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			return nil
		}

		streamed := false
		reply := manager.HandleTurn(ctx, sess, text, func(chunk string) {
			streamed = true
			fmt.Fprint(out, chunk)
		})

		// Streamed answers are already on screen; everything else prints
		// as a single reply line.
		if streamed {
			fmt.Fprintln(out)
		} else {
			fmt.Fprintln(out, reply.Text)
		}
	}
}
