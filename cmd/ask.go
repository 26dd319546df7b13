package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/trigtutor/internal/generate"
	"github.com/abhisek/trigtutor/internal/ui/theme"
)

var askCmd = &cobra.Command{
	Use:   "ask <topic> <question>",
	Short: "Generate an exercise and ask the tutor about it",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := args[0]
		question := strings.Join(args[1:], " ")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		ex, err := a.Exercises.Generate(ctx, topic, nil)
		if err != nil {
			return userError(a, generate.SurfaceExercise, err)
		}
		fmt.Println(theme.Question(1, ex.Question, optionTexts(ex.Options), ex.CorrectAnswerIndex))
		fmt.Println()

		answer, err := a.Tutor.Clarify(ctx, ex, question)
		if err != nil {
			return userError(a, generate.SurfaceTutor, err)
		}
		fmt.Println(theme.Card.Render(answer))
		return nil
	},
}
