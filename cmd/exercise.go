package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/trigtutor/internal/analytics"
	"github.com/abhisek/trigtutor/internal/domain"
	"github.com/abhisek/trigtutor/internal/exercises"
	"github.com/abhisek/trigtutor/internal/generate"
	"github.com/abhisek/trigtutor/internal/quiz"
	"github.com/abhisek/trigtutor/internal/ui/theme"
)

var exerciseCmd = &cobra.Command{
	Use:   "exercise <topic>",
	Short: "Solve freshly generated exercises; questions are not repeated within the run",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.Join(args, " ")
		count, _ := cmd.Flags().GetInt("count")
		user, _ := cmd.Flags().GetString("user")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		in := bufio.NewScanner(cmd.InOrStdin())
		history := exercises.NewHistory()

		for i := 1; i <= count; i++ {
			ex, err := a.Exercises.Next(ctx, history, topic)
			if err != nil {
				return userError(a, generate.SurfaceExercise, err)
			}

			correct, err := askExercise(in, i, ex)
			if err != nil {
				return err
			}
			if user != "" {
				updateAnalytics(cmd, a, user, func(d *analytics.Data) error {
					d.RecordExercise(correct)
					return nil
				})
			}

			for {
				fmt.Print(theme.Hint.Render("¿Alguna duda? (Enter para seguir) "))
				if !in.Scan() {
					break
				}
				q := strings.TrimSpace(in.Text())
				if q == "" {
					break
				}
				answer, err := a.Tutor.Clarify(ctx, ex, q)
				if err != nil {
					fmt.Println(theme.ErrorText.Render(generate.UserMessage(generate.SurfaceTutor, err)))
					continue
				}
				fmt.Println(theme.Card.Render(answer))
			}
		}
		return nil
	},
}

func init() {
	exerciseCmd.Flags().IntP("count", "n", 1, "Number of exercises")
	exerciseCmd.Flags().String("user", "", "User ID to record exercise stats under")
}

func askExercise(in *bufio.Scanner, n int, ex domain.ExerciseContent) (bool, error) {
	fmt.Println(theme.Question(n, ex.Question, optionTexts(ex.Options), -1))
	choice, err := readChoice(in, len(ex.Options))
	if err != nil {
		return false, err
	}
	correct := choice != quiz.Unanswered && ex.IsCorrect(choice)
	fmt.Println("   " + theme.Verdict(correct))
	if !correct {
		fmt.Println(theme.Body.Render(fmt.Sprintf("   Respuesta: %s) %s", string(rune('A'+ex.CorrectAnswerIndex)), ex.Options[ex.CorrectAnswerIndex].Text)))
	}
	fmt.Println(theme.Hint.Render("   " + ex.Explanation))
	return correct, nil
}
