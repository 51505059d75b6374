package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/pe-research/internal/model"
	"github.com/sells-group/pe-research/internal/store"
)

var chatPersist bool

const chatWelcome = `PE Research AI - ask about any public company.

Try asking about:
  "Tell me about Tesla"
  "Analyze Apple's market position"
  "Who are Microsoft's competitors?"

Commands: /new starts a fresh conversation, /exit quits.`

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive research conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		engine, err := initEngine()
		if err != nil {
			return err
		}

		var st store.Store
		if chatPersist {
			if st, err = initStore(ctx); err != nil {
				return err
			}
			defer st.Close()
		}

		fmt.Println(chatWelcome)
		fmt.Println()

		var sessionID string
		var history []model.Message
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			switch {
			case line == "":
				continue
			case line == "/exit" || line == "/quit":
				return nil
			case line == "/new":
				history = nil
				sessionID = ""
				fmt.Println("started a new chat")
				continue
			}

			result := engine.Analyze(ctx, line, history)
			fmt.Println()
			fmt.Println(result.Report)
			fmt.Println()

			history = append(history,
				model.Message{Role: model.RoleUser, Content: line},
				model.Message{Role: model.RoleAssistant, Content: result.Report},
			)

			if st != nil {
				if err := persistTurns(ctx, st, &sessionID, line, result.Report); err != nil {
					zap.L().Warn("chat: persist failed", zap.Error(err))
				}
			}
		}
		return scanner.Err()
	},
}

// persistTurns lazily creates a session on first use and appends both turns.
func persistTurns(ctx context.Context, st store.Store, sessionID *string, query, report string) error {
	if *sessionID == "" {
		sess, err := st.CreateSession(ctx, sessionTitle(query))
		if err != nil {
			return err
		}
		*sessionID = sess.ID
		fmt.Printf("(session %s)\n", sess.ID)
	}

	if err := st.AppendMessage(ctx, *sessionID, model.Message{Role: model.RoleUser, Content: query}); err != nil {
		return err
	}
	return st.AppendMessage(ctx, *sessionID, model.Message{Role: model.RoleAssistant, Content: report})
}

// sessionTitle derives a short session title from the first query.
func sessionTitle(query string) string {
	if len(query) > 60 {
		return query[:60]
	}
	return query
}

func init() {
	chatCmd.Flags().BoolVar(&chatPersist, "persist", false, "store the conversation in the session store")
	rootCmd.AddCommand(chatCmd)
}
