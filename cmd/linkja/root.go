package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for linkja.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkja",
		Short: "De-identify patient records for privacy-preserving record linkage",
		Long: `linkja hashes patient identifiers with site and project salts so records
can be linked across sites without exchanging names, birth dates or IDs.

Each run writes a hash file for sharing, a local crosswalk from patient ID
to hash, and a file listing rejected rows. A failed run removes every file
it created.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewHashCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
