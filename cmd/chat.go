package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/trigtutor/internal/chat"
	"github.com/abhisek/trigtutor/internal/generate"
	"github.com/abhisek/trigtutor/internal/ui/theme"
)

var chatCmd = &cobra.Command{
	Use:   "chat <topic>",
	Short: "Ask for a topic the way the chat does: validate, then explain",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.Join(args, " ")
		user, _ := cmd.Flags().GetString("user")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		reply, err := a.Chat.Submit(cmd.Context(), user, topic)
		if err != nil {
			return userError(a, generate.SurfaceChat, err)
		}

		fmt.Println(theme.Body.Render(reply.Text))
		for _, s := range reply.Suggestions {
			fmt.Println("  • " + theme.Available.Render(s))
		}
		if reply.View == chat.ViewContent && reply.Content != nil {
			fmt.Println()
			printLesson(*reply.Content)
		}
		return nil
	},
}

func init() {
	chatCmd.Flags().String("user", "", "User ID to record the request under")
}
