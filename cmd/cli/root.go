package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the `appauth-admin` command tree.
// NewRootCommand 构建 `appauth-admin` 命令树。
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "appauth-admin",
		Short: "A CLI tool for operating the extension app authentication service.",
		Long: `appauth-admin inspects and converts the key material the appauth service
loads, and checks a configuration file before it is deployed.`,
		SilenceUsage: true,
	}
	root.AddCommand(newKeyCommand(), newCertCommand(), newConfigCommand())
	return root
}

// Execute is the main entry point for the CLI application.
// It parses the command-line arguments and executes the appropriate command.
// If an error occurs, it prints the error and exits.
// Execute 是 CLI 应用程序的主入口点。
// 它解析命令行参数并执行相应的命令。如果发生错误，它会打印错误并退出。
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
