package main

import (
	"fmt"

	"github.com/rahul4469/linguist-ai/internal/crypto"
	"github.com/spf13/cobra"
)

func newGenKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genkey",
		Short: "Print a random secret for CSRF_SECRET or SESSION_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := crypto.GenerateKeyBase64()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}
}
