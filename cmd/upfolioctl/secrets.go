package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/upfolio/internal/ai"
	"github.com/baxromumarov/upfolio/internal/config"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage the AI provider key in the OS keyring",
}

var setAIKeyCmd = &cobra.Command{
	Use:       "set-ai-key <provider>",
	Short:     "Store an AI provider key read from stdin",
	Args:      cobra.ExactArgs(1),
	ValidArgs: providers,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := checkProvider(args[0])
		if err != nil {
			return err
		}
		reader := bufio.NewReader(cmd.InOrStdin())
		key, err := reader.ReadString('\n')
		if err != nil && key == "" {
			return fmt.Errorf("read key from stdin: %w", err)
		}
		if err := config.SetAIKey(provider, strings.TrimSpace(key)); err != nil {
			return fmt.Errorf("store key: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored %s key in %s keyring\n", provider, config.KeyringService)
		return nil
	},
}

var deleteAIKeyCmd = &cobra.Command{
	Use:       "delete-ai-key <provider>",
	Short:     "Remove a stored AI provider key",
	Args:      cobra.ExactArgs(1),
	ValidArgs: providers,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := checkProvider(args[0])
		if err != nil {
			return err
		}
		if err := config.DeleteAIKey(provider); err != nil {
			return fmt.Errorf("delete key: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s key\n", provider)
		return nil
	},
}

var providers = []string{ai.ProviderGemini, ai.ProviderOpenAI, ai.ProviderLangChainOpenAI, ai.ProviderLangChainGoogle}

func checkProvider(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range providers {
		if p == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("unknown provider %q (want one of %s)", name, strings.Join(providers, ", "))
}

func init() {
	secretsCmd.AddCommand(setAIKeyCmd, deleteAIKeyCmd)
	rootCmd.AddCommand(secretsCmd)
}
