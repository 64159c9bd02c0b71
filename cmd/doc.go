// Package cmd implements the command-line interface for workspacemcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide Google Workspace tools for AI assistants
//   - auth: Run the Google OAuth authorization flow from the terminal
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
