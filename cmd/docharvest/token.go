package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/docharvest/internal/config"
	"github.com/jonathan/docharvest/internal/server"
)

var tokenCommand = &cobra.Command{
	Use:   "token",
	Short: "Manage API operator credentials",
}

var tokenHashKeyCommand = &cobra.Command{
	Use:   "hash-key <key>",
	Short: "Hash an operator key for the API_KEY_HASH environment variable",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenHashKey,
}

var tokenIssueCommand = &cobra.Command{
	Use:   "issue",
	Short: "Issue a bearer token using the configured JWT secret",
	Long:  "Issues an operator bearer token signed with JWT_SECRET, useful for scripting against the API without going through POST /auth/token.",
	RunE:  runTokenIssue,
}

func init() {
	tokenCommand.AddCommand(tokenHashKeyCommand)
	tokenCommand.AddCommand(tokenIssueCommand)
	rootCmd.AddCommand(tokenCommand)
}

func runTokenHashKey(_ *cobra.Command, args []string) error {
	hash, err := config.HashOperatorKey(args[0])
	if err != nil {
		return err
	}

	fmt.Println(hash)
	return nil
}

func runTokenIssue(_ *cobra.Command, _ []string) error {
	authCfg, err := config.NewAuthConfig()
	if err != nil {
		return err
	}

	token, expiresAt, err := server.NewJWTService(authCfg).GenerateToken("operator")
	if err != nil {
		return err
	}

	fmt.Println(token)
	fmt.Printf("Expires: %s\n", expiresAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}
