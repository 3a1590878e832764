package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/pfrederiksen/refsched/internal/crypto"
	"github.com/spf13/cobra"
)

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash [password]",
		Short: "Print an argon2id hash for a user's password_hash setting",
		Long: `Print an argon2id hash of a password for the users section of the config.
Reads the password from the first line of stdin when it is not given as an argument.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHash,
	}
}

func runHash(cmd *cobra.Command, args []string) error {
	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		if scanner.Scan() {
			password = strings.TrimRight(scanner.Text(), "\r")
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
	}

	if password == "" {
		return errors.New("password must not be empty")
	}

	encoded, err := crypto.NewHasher(crypto.DefaultParams).Hash(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), encoded)
	return nil
}
