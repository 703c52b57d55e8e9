package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"ahkneemay/infrastructure/config"

	"github.com/spf13/cobra"
)

var (
	// Used for flags.
	namePrefix string
	useMock    bool

	rootCmd = &cobra.Command{
		Use:           "ahkneemayctl",
		Short:         "Administer the AhKneeMay stores.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&namePrefix, "prefix", "", "resource name prefix (default NAME_PREFIX)")
	rootCmd.PersistentFlags().BoolVar(&useMock, "mock", false, "use in-memory stores")

	rootCmd.AddCommand(newProvisionCmd())
	rootCmd.AddCommand(newListCmd())
}

// loadConfig applies the persistent flags on top of the environment
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if namePrefix != "" {
		cfg.NamePrefix = namePrefix
	}
	if useMock {
		cfg.UseMockStores = true
	}
	return cfg, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
