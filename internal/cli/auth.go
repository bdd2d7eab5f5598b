package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/slateworks/ticklist/internal/client"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Manage authentication with the todo server.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the todo server",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from the todo server",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account on the todo server",
	RunE:  runRegister,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	RunE:  runStatus,
}

var authServer string

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(statusCmd)

	authCmd.PersistentFlags().StringVar(&authServer, "server", "", "Server URL (e.g. http://localhost:3000)")
}

func authClient(cmd *cobra.Command) (*client.Client, error) {
	c, err := client.New()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("server") {
		if err := c.SetServer(authServer); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	c, err := authClient(cmd)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username or email: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("Password: ")
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	password := string(passwordBytes)
	fmt.Println()

	fmt.Println("🔄 Logging in...")
	user, err := c.Login(username, password)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Logged in as %s.\n", user.Username)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	c, err := authClient(cmd)
	if err != nil {
		return err
	}

	if !c.IsLoggedIn() {
		fmt.Println("Not logged in.")
		return nil
	}

	if err := c.Logout(); err != nil {
		return err
	}

	fmt.Println("✅ Logged out successfully.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	c, err := authClient(cmd)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	password := string(passwordBytes)
	fmt.Println()

	fmt.Print("Confirm Password: ")
	confirmBytes, _ := term.ReadPassword(int(syscall.Stdin))
	confirm := string(confirmBytes)
	fmt.Println()

	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	fmt.Println("🔄 Creating account...")
	user, err := c.Register(username, email, password)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Account created, logged in as %s.\n", user.Username)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, err := authClient(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("Server: %s\n", c.ServerURL())
	if !c.IsLoggedIn() {
		fmt.Println("Status: not logged in (todos are stored locally)")
		return nil
	}

	user, err := c.Verify()
	if err != nil {
		fmt.Println("Status: session rejected by server; logged out")
		return nil
	}

	fmt.Printf("Status: logged in as %s\n", user.Username)
	return nil
}
