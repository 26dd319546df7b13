package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/trigtutor/internal/generate"
	"github.com/abhisek/trigtutor/internal/ui/theme"
)

var practiceCmd = &cobra.Command{
	Use:   "practice <topic>",
	Short: "Run a practice session of up to five distinct exercises",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.Join(args, " ")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.Exercises.PracticeSession(cmd.Context(), topic)
		if err != nil {
			return userError(a, generate.SurfacePractice, err)
		}

		in := bufio.NewScanner(cmd.InOrStdin())
		correct := 0
		for i, ex := range list {
			ok, err := askExercise(in, i+1, ex)
			if err != nil {
				return err
			}
			if ok {
				correct++
			}
		}
		fmt.Println(theme.Subtitle.Render(fmt.Sprintf("Resultado: %d/%d", correct, len(list))))
		return nil
	},
}
