package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/trigtutor/internal/roadmap"
	"github.com/abhisek/trigtutor/internal/store"
	"github.com/abhisek/trigtutor/internal/ui/theme"
)

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Show the learning path and a user's progress along it",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		progress, err := loadProgress(cmd, s.UserRepo(), user)
		if err != nil {
			return err
		}

		for _, sec := range roadmap.Sections() {
			fmt.Println(theme.Title.Render(sec.Title))
			for _, n := range sec.Nodes {
				p := progress[n.ID]
				line := fmt.Sprintf("%s %-28s %s", theme.NodeStatus(p.Completed, roadmap.Unlocked(n, progress)), n.ID, n.Title)
				if p.Score != nil {
					line += theme.Hint.Render(fmt.Sprintf("  (%d)", *p.Score))
				}
				fmt.Println(line)
			}
			fmt.Println()
		}

		total := len(roadmap.AllNodes())
		fmt.Println(theme.Subtitle.Render(fmt.Sprintf("Completado: %d/%d", roadmap.CompletedCount(progress), total)))
		if next, ok := roadmap.FirstIncomplete(progress); ok {
			fmt.Println(theme.Hint.Render("Siguiente: " + next.Title))
		}
		return nil
	},
}

var roadmapCompleteCmd = &cobra.Command{
	Use:   "complete <node-id>",
	Short: "Record an attempt at a roadmap node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		score, _ := cmd.Flags().GetInt("score")
		if user == "" {
			return errors.New("--user is required")
		}

		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		users := s.UserRepo()
		data, err := users.EnsureProfile(cmd.Context(), user, "", "")
		if err != nil {
			return err
		}
		if data.Progress == nil {
			data.Progress = roadmap.Progress{}
		}
		done, err := roadmap.Complete(data.Progress, args[0], score)
		if err != nil {
			return err
		}
		if err := users.Save(cmd.Context(), &store.UserData{Profile: data.Profile, Analytics: data.Analytics, Progress: data.Progress}); err != nil {
			return err
		}
		fmt.Println(theme.NodeStatus(done, true), args[0])
		return nil
	},
}

func init() {
	roadmapCmd.PersistentFlags().String("user", "", "User ID whose progress to use")
	roadmapCompleteCmd.Flags().Int("score", 0, "Score obtained in the attempt")
	roadmapCmd.AddCommand(roadmapCompleteCmd)
}

// loadProgress returns the stored progress, or empty progress for an unknown
// or unspecified user.
func loadProgress(cmd *cobra.Command, users store.UserRepo, id string) (roadmap.Progress, error) {
	if id == "" {
		return roadmap.Progress{}, nil
	}
	data, err := users.Get(cmd.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return roadmap.Progress{}, nil
	}
	if err != nil {
		return nil, err
	}
	if data.Progress == nil {
		return roadmap.Progress{}, nil
	}
	return data.Progress, nil
}
