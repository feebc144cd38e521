package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/wadesk/wadesk/internal/cli.version=1.2.3"
	version = "0.3.0"
	logo    = "\n" +
		" __      __       ____            _\n" +
		" \\ \\    / /_ _   |  _ \\  ___  ___| | __\n" +
		"  \\ \\/\\/ / _` |  | | | |/ _ \\/ __| |/ /\n" +
		"   \\_/\\_/\\__,_|  |_| |_|\\___/\\___|_|\\_\\\n"
)

var rootCmd = &cobra.Command{
	Use:   "wadesk",
	Short: "WaDesk - WhatsApp helpdesk with AI replies and human takeover",
	Long:  color.CyanString(logo) + "\nA WhatsApp Business helpdesk: AI answers from your knowledge base until a human takes over.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(knowledgeCmd)
}

func printHeader(title string) {
	fmt.Println(color.CyanString(logo))
	if title != "" {
		fmt.Println(title)
		fmt.Println("─────────────────────")
	}
}
