package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/RafieAmandio/Teacher-RAG/pkg/cli/config"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/usecase"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/logging"
	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdAsk() *cli.Command {
	var backend backendConfig
	var userID string
	var chatID string
	var agentID string
	var showSources bool

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Usage:       "Caller ID owning the chat",
			Required:    true,
			Sources:     cli.EnvVars("TEACHER_RAG_USER_ID"),
			Destination: &userID,
		},
		&cli.StringFlag{
			Name:        "chat-id",
			Usage:       "Continue an existing chat",
			Destination: &chatID,
		},
		&cli.StringFlag{
			Name:        "agent-id",
			Usage:       "Start a new chat with this agent when --chat-id is not set",
			Destination: &agentID,
		},
		&cli.BoolFlag{
			Name:        "sources",
			Usage:       "Print the retrieved passages after the answer",
			Destination: &showSources,
		},
	}
	flags = append(flags, backend.Flags()...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask an agent a question",
		ArgsUsage: "QUESTION",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if question == "" {
				return goerr.Wrap(config.ErrInvalidConfig, "question is required")
			}

			rt, err := backend.open(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			id, err := resolveChat(ctx, rt.uc, userID, chatID, agentID, question)
			if err != nil {
				return err
			}

			answer, err := rt.uc.Query.SendMessage(ctx, userID, id, question)
			if err != nil {
				return err
			}

			w := os.Stdout
			color.New(color.FgCyan, color.Bold).Fprintf(w, "[chat %s]\n", id)
			fmt.Fprintln(w, answer.Reply)

			if showSources && len(answer.Passages) > 0 {
				fmt.Fprintln(w)
				color.New(color.FgYellow).Fprintln(w, "Sources:")
				for i, p := range answer.Passages {
					fmt.Fprintf(w, "  %d. %s #%d (score %.3f)\n", i+1, p.Title, p.ChunkIndex, p.Score)
				}
			}
			return nil
		},
	}
}

// resolveChat returns chatID, or opens a new chat titled after the question
func resolveChat(ctx context.Context, uc *usecase.UseCases, userID, chatID, agentID, question string) (model.ChatID, error) {
	if chatID != "" {
		return model.ChatID(chatID), nil
	}
	if agentID == "" {
		return "", goerr.Wrap(config.ErrMissingRequired, "either --chat-id or --agent-id is required",
			goerr.V(config.FlagKey, "chat-id"))
	}

	chat, err := uc.Chat.Create(ctx, userID, model.AgentID(agentID), chatTitle(question))
	if err != nil {
		return "", err
	}
	logging.Default().Info("Chat created", "chat_id", chat.ID, "agent_id", chat.AgentID)
	return chat.ID, nil
}

const maxChatTitleRunes = 40

func chatTitle(question string) string {
	runes := []rune(question)
	if len(runes) <= maxChatTitleRunes {
		return question
	}
	return string(runes[:maxChatTitleRunes]) + "..."
}
