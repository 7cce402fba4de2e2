// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/pagelens/pagelens/internal/secrets"
	lenserr "github.com/pagelens/pagelens/pkg/errors"
	"github.com/spf13/cobra"
)

// newSecretStore is swapped in tests to avoid touching the OS keyring.
var newSecretStore = func() secrets.Store { return secrets.NewKeyringStore() }

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage API keys in the OS keyring",
		Long:  "Store and remove provider API keys in the OS keyring. Config files then reference them as keyring://service/key instead of holding plaintext.",
	}

	cmd.AddCommand(newSecretSetCmd(), newSecretDeleteCmd())

	return cmd
}

func newSecretSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <service> <key>",
		Short: "Store a secret value read from stdin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, key := args[0], args[1]

			reader := bufio.NewReader(cmd.InOrStdin())
			value, err := reader.ReadString('\n')
			if err != nil && value == "" {
				return lenserr.Wrap(err, lenserr.CodeSecretInvalidInput, "reading secret from stdin")
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return lenserr.New(lenserr.CodeSecretInvalidInput, "secret value is empty")
			}

			if err := newSecretStore().Store(service, key, value); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Stored keyring://%s/%s\n", service, key)
			return err
		},
	}
}

func newSecretDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <service> <key>",
		Short: "Remove a secret from the keyring",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, key := args[0], args[1]
			if err := newSecretStore().Delete(service, key); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted keyring://%s/%s\n", service, key)
			return err
		},
	}
}
