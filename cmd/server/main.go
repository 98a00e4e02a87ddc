package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const defaultConfigName = "TargetCreator.config"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:     "target-creator",
	Short:   "Target Creator scene editor backend",
	Long:    `Serves the Target Creator scene editor API and converts scene files between exchange formats.`,
	Version: Version,
	RunE:    runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: "+defaultConfigName+" next to the executable)")
	rootCmd.Flags().IntP("port", "p", 0, "override the configured listen port")
	rootCmd.AddCommand(serveCmd, convertCmd)
}

// configPath resolves the --config flag, falling back to the file next to
// the executable.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	return filepath.Join(filepath.Dir(exePath), defaultConfigName), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
