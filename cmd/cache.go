package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clean the response cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the cache backend and number of stored entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBase(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		n, err := b.Cache.Len(cmd.Context())
		if err != nil {
			return fmt.Errorf("count entries: %w", err)
		}
		fmt.Printf("Backend:  %s\n", b.Config.Cache.Backend)
		fmt.Printf("TTL:      %s\n", b.Cache.TTL())
		fmt.Printf("Entries:  %d\n", n)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete cached responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		expired, _ := cmd.Flags().GetBool("expired")

		b, err := openBase(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		run := b.Cache.Clear
		if expired {
			run = b.Cache.Sweep
		}
		n, err := run(cmd.Context())
		if err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Printf("Removed %d entries.\n", n)
		return nil
	},
}

func init() {
	cacheClearCmd.Flags().Bool("expired", false, "Only remove expired or unreadable entries")
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
