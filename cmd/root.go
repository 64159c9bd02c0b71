package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the workspacemcp application
var rootCmd = &cobra.Command{
	Use:   "workspacemcp",
	Short: "MCP server for Google Workspace",
	Long: `workspacemcp is an MCP (Model Context Protocol) server that gives AI
assistants access to Google Docs, Sheets, Drive, and Calendar.

It speaks MCP over stdio and authorizes against Google with a local
OAuth flow. Run 'workspacemcp auth' once to authorize, then configure
your MCP client to launch 'workspacemcp serve'.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "workspacemcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
