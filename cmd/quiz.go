package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/trigtutor/internal/analytics"
	"github.com/abhisek/trigtutor/internal/app"
	"github.com/abhisek/trigtutor/internal/generate"
	"github.com/abhisek/trigtutor/internal/quiz"
	"github.com/abhisek/trigtutor/internal/store"
	"github.com/abhisek/trigtutor/internal/ui/theme"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <topic>",
	Short: "Take the topic quiz in batches of five",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.Join(args, " ")
		rounds, _ := cmd.Flags().GetInt("rounds")
		user, _ := cmd.Flags().GetString("user")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		content, err := a.Lessons.Generate(ctx, topic)
		if err != nil {
			return userError(a, generate.SurfaceLesson, err)
		}

		in := bufio.NewScanner(cmd.InOrStdin())
		state := quiz.Initialize(content)
		for round := 1; ; round++ {
			fmt.Println(theme.Title.Render(fmt.Sprintf("Ronda %d", round)))
			res, err := runBatch(in, state)
			if err != nil {
				return err
			}
			fmt.Println(theme.Subtitle.Render(fmt.Sprintf("Resultado: %d/%d", res.Correct, res.Total())))
			recordQuiz(cmd, a, user, res)

			if rounds > 0 && round >= rounds {
				return nil
			}
			if rounds == 0 && !confirm(in, "¿Otra ronda? (s/n) ") {
				return nil
			}

			next, err := a.Quiz.Advance(ctx, state, topic)
			if err != nil {
				return userError(a, generate.SurfaceQuiz, err)
			}
			state = next
		}
	},
}

func init() {
	quizCmd.Flags().Int("rounds", 0, "Number of batches to take (0 asks after each batch)")
	quizCmd.Flags().String("user", "", "User ID to record quiz stats under")
}

// runBatch asks every question of the current batch and grades the answers.
func runBatch(in *bufio.Scanner, state quiz.BatchState) (quiz.Result, error) {
	answers := make([]int, len(state.CurrentBatch))
	for i, q := range state.CurrentBatch {
		fmt.Println(theme.Question(i+1, q.Question, optionTexts(q.Options), -1))
		choice, err := readChoice(in, len(q.Options))
		if err != nil {
			return quiz.Result{}, err
		}
		answers[i] = choice
		fmt.Println("   " + theme.Verdict(q.IsCorrect(choice)))
		fmt.Println(theme.Hint.Render("   " + q.Explanation))
	}
	return quiz.Score(state.CurrentBatch, answers)
}

// readChoice reads an option letter. A blank line skips the question.
func readChoice(in *bufio.Scanner, n int) (int, error) {
	for {
		fmt.Print("   > ")
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return 0, err
			}
			return 0, io.ErrUnexpectedEOF
		}
		s := strings.ToUpper(strings.TrimSpace(in.Text()))
		if s == "" {
			return quiz.Unanswered, nil
		}
		if len(s) == 1 && s[0] >= 'A' && int(s[0]-'A') < n {
			return int(s[0] - 'A'), nil
		}
		fmt.Println(theme.Hint.Render(fmt.Sprintf("   Escribe una letra entre A y %c.", 'A'+n-1)))
	}
}

func confirm(in *bufio.Scanner, prompt string) bool {
	fmt.Print(prompt)
	if !in.Scan() {
		return false
	}
	s := strings.ToLower(strings.TrimSpace(in.Text()))
	return s == "s" || s == "si" || s == "sí" || s == "y"
}

func recordQuiz(cmd *cobra.Command, a *app.App, user string, res quiz.Result) {
	if user == "" {
		return
	}
	updateAnalytics(cmd, a, user, func(d *analytics.Data) error {
		d.RecordQuiz(res.Correct, res.Incorrect)
		return nil
	})
}

// updateAnalytics applies fn to the user's stored analytics. Failures are
// logged; stats never block practice.
func updateAnalytics(cmd *cobra.Command, a *app.App, user string, fn func(*analytics.Data) error) {
	ctx := cmd.Context()
	users := a.Store.UserRepo()
	data, err := users.EnsureProfile(ctx, user, "", "")
	if err == nil {
		err = fn(&data.Analytics)
	}
	if err == nil {
		err = users.Save(ctx, &store.UserData{Profile: data.Profile, Analytics: data.Analytics})
	}
	if err != nil {
		a.Log.Warn("failed to update analytics", zap.String("user_id", user), zap.Error(err))
	}
}
