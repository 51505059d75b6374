package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/pe-research/internal/model"
	"github.com/sells-group/pe-research/internal/store"
)

var (
	askSession string
	askOut     string
)

var askCmd = &cobra.Command{
	Use:   "ask [query...]",
	Short: "Run one research query and print the report",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		query := strings.Join(args, " ")

		engine, err := initEngine()
		if err != nil {
			return err
		}

		var (
			st      store.Store
			history []model.Message
		)
		if askSession != "" {
			if st, err = initStore(ctx); err != nil {
				return err
			}
			defer st.Close()

			sess, err := st.GetSession(ctx, askSession)
			if err != nil {
				return err
			}
			if sess == nil {
				return eris.Errorf("session %s not found", askSession)
			}
			if history, err = st.ListMessages(ctx, askSession); err != nil {
				return err
			}
		}

		result := engine.Analyze(ctx, query, history)

		if st != nil {
			if err := st.AppendMessage(ctx, askSession, model.Message{Role: model.RoleUser, Content: query}); err != nil {
				zap.L().Warn("ask: persist user turn failed", zap.Error(err))
			} else if err := st.AppendMessage(ctx, askSession, model.Message{Role: model.RoleAssistant, Content: result.Report}); err != nil {
				zap.L().Warn("ask: persist assistant turn failed", zap.Error(err))
			}
		}

		if askOut != "" {
			if err := os.WriteFile(askOut, []byte(result.Report+"\n"), 0o644); err != nil {
				return eris.Wrapf(err, "write report to %s", askOut)
			}
			fmt.Printf("report written to %s\n", askOut)
			return nil
		}

		fmt.Println(result.Report)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askSession, "session", "", "session ID to read history from and append turns to")
	askCmd.Flags().StringVarP(&askOut, "out", "o", "", "write the report to a file instead of stdout")
	rootCmd.AddCommand(askCmd)
}
