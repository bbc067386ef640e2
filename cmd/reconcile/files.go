package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"payoutrecon/internal/payout"
)

func (c *cli) filesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List payout CSV files, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			files, err := payout.ListFiles(c.payoutDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintf(out, "no CSV files in %s\n", c.payoutDir)
				return nil
			}
			fmt.Fprintf(out, "Found %d CSV files in %s:\n\n", len(files), c.payoutDir)
			for i, f := range files {
				fmt.Fprintf(out, "%d. %s\n", i+1, f.Name)
				fmt.Fprintf(out, "   Size: %.1f MB\n", float64(f.Size)/(1024*1024))
				fmt.Fprintf(out, "   Modified: %s\n", f.ModTime.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}
