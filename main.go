package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nailsalon",
	Short: "Nail salon booking backend",
	Long: `Booking backend for a nail salon: manicurist availability, slot
reservation without double booking, appointment lifecycle and client
notifications.

Configuration is read from .env, config.yaml and the environment.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, reminder scheduler and notification worker",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and seed defaults",
	RunE:  runMigrate,
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	RunE:  runCreateAdmin,
}

var sendRemindersCmd = &cobra.Command{
	Use:   "send-reminders",
	Short: "Send tomorrow's appointment reminders once and exit",
	RunE:  runSendReminders,
}

var (
	printRoutes   bool
	adminEmail    string
	adminName     string
	adminPassword string
)

func init() {
	serveCmd.Flags().BoolVar(&printRoutes, "print-routes", false, "log every registered route on startup")

	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email (required)")
	createAdminCmd.Flags().StringVar(&adminName, "name", "Admin", "admin display name")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password, at least 8 characters (required)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd, sendRemindersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
