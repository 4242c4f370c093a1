package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/eringen/pinblob"
)

// version is set at build time via ldflags.
var version = "dev"

var envFile string

var rootCmd = &cobra.Command{
	Use:           "pinblob",
	Short:         "Image gallery backed by an object store",
	Long:          `PinBlob serves a masonry image gallery and manages the images in its object store.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(checkTokenCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pinblob version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("pinblob %s\n", version)
	},
}

// loadConfig reads the dotenv file, if present, then the environment.
// Variables already set in the environment win over the file.
func loadConfig() (pinblob.SiteConfig, error) {
	var cfg pinblob.SiteConfig
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// cliLogger keeps gateway logs out of command output unless something fails.
func cliLogger() *log.Logger {
	l := log.New("pinblob")
	l.SetLevel(log.WARN)
	l.SetOutput(os.Stderr)
	return l
}
