package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"reviewscraper/pkg/auth"
	"reviewscraper/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage news API credentials",
	Long: `Manage stored news API credentials.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read only)`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [account]",
	Short: "Store news API credentials",
	Long: `Store a client id and secret for the news search API.

You will be prompted for the account name (if not provided), the client id
and the client secret. The secret is not echoed.`,
	Example: `  # Interactive login
  reviewscraper auth login

  # Store credentials under a name
  reviewscraper auth login work`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout <account>",
	Short: "Remove stored credentials",
	Args:  cobra.ExactArgs(1),
	Run:   runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored accounts with the client secret masked.`,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func newCredentialManager() *auth.Manager {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}
	return manager
}

func runLogin(cmd *cobra.Command, args []string) {
	manager := newCredentialManager()
	reader := bufio.NewReader(os.Stdin)

	auth.ShowAPIKeyGuide(os.Stdout)

	var name string
	if len(args) > 0 {
		name = strings.TrimSpace(args[0])
	}
	if name == "" {
		fmt.Print("Account name (default): ")
		input, _ := reader.ReadString('\n')
		name = strings.TrimSpace(input)
		if name == "" {
			name = "default"
		}
	}

	if existing, _ := manager.Retrieve(name); existing != nil {
		fmt.Printf("Account '%s' already exists. Update credentials? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Print("Client ID: ")
	clientID, err := reader.ReadString('\n')
	if err != nil {
		ui.PrintError("Failed to read client id", err.Error())
		os.Exit(1)
	}
	clientID = strings.TrimSpace(clientID)

	fmt.Print("Client Secret: ")
	secret, err := readPassword(reader)
	if err != nil {
		ui.PrintError("Failed to read client secret", err.Error())
		os.Exit(1)
	}
	fmt.Println()

	account := &auth.Account{
		Name:         name,
		ClientID:     clientID,
		ClientSecret: secret,
		LastModified: time.Now(),
	}
	if err := manager.Store(account); err != nil {
		ui.PrintError("Failed to store credentials", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Account saved: %s", name))
}

// readPassword reads a line without echo when stdin is a terminal
func readPassword(reader *bufio.Reader) (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		b, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func runLogout(cmd *cobra.Command, args []string) {
	manager := newCredentialManager()

	if err := manager.Delete(args[0]); err != nil {
		ui.PrintError("Failed to remove account", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess(fmt.Sprintf("Account removed: %s", args[0]))
}

func runList(cmd *cobra.Command, args []string) {
	manager := newCredentialManager()

	accounts, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list accounts", err.Error())
		os.Exit(1)
	}
	if len(accounts) == 0 {
		ui.PrintWarning("No stored accounts")
		fmt.Println("\nTo store credentials, run:")
		fmt.Println("  reviewscraper auth login")
		return
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Account", "Client ID", "Secret", "Modified"})
	for _, a := range accounts {
		s := auth.SanitizeAccount(a)
		modified := ""
		if !s.LastModified.IsZero() {
			modified = s.LastModified.Format("2006-01-02 15:04")
		}
		t.AppendRow(table.Row{s.Name, s.ClientID, s.ClientSecret, modified})
	}
	t.Render()
}
