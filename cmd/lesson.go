package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/trigtutor/internal/domain"
	"github.com/abhisek/trigtutor/internal/generate"
	"github.com/abhisek/trigtutor/internal/ui/theme"
)

var lessonCmd = &cobra.Command{
	Use:   "lesson <topic>",
	Short: "Generate the lesson and quiz for a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.Join(args, " ")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		content, err := a.Lessons.Generate(cmd.Context(), topic)
		if err != nil {
			return userError(a, generate.SurfaceLesson, err)
		}
		printLesson(content)
		return nil
	},
}

func printLesson(content domain.GeneratedContent) {
	fmt.Println(content.Body)
	fmt.Println()
	fmt.Println(theme.Title.Render("Quiz"))
	for i, q := range content.Quiz {
		fmt.Println(theme.Question(i+1, q.Question, optionTexts(q.Options), q.CorrectAnswerIndex))
		fmt.Println(theme.Hint.Render("   " + q.Explanation))
	}
}

func optionTexts(opts []domain.Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Text
	}
	return out
}
