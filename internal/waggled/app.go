// Package waggled assembles the waggle daemon command.
package waggled

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ravenhall/waggle/internal/waggle"
	"github.com/ravenhall/waggle/internal/waggle/config"
	"github.com/ravenhall/waggle/internal/waggle/options"
	"github.com/ravenhall/waggle/pkg/logger"
	"github.com/ravenhall/waggle/pkg/utils/templates"
)

const (
	// flagConfig names the configuration file flag.
	flagConfig = "waggle-config"

	// envPrefix scopes the environment variables read by viper.
	envPrefix = "WAGGLE"
)

// NewWaggledCommand creates the `waggled` command with its flag and
// configuration plumbing. Precedence: flags over environment over config
// file over defaults.
func NewWaggledCommand() *cobra.Command {
	opts := options.NewOptions()

	cmd := &cobra.Command{
		Use:   "waggled",
		Short: "waggled runs the waggle swarm daemon",
		Long: templates.LongDesc(`
			waggled runs the long-lived side of the waggle swarm: the background
			worker dispatcher, the hook policy watcher, periodic host metrics
			sampling, learning store consolidation, and a read-mostly HTTP status
			API over the shared stores.`),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile := viper.GetString(flagConfig); cfgFile != "" {
				viper.SetConfigFile(cfgFile)
				if err := viper.ReadInConfig(); err != nil {
					return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
				}
			} else {
				viper.SetConfigName("config")
				viper.SetConfigType("yaml")
				if home, err := os.UserHomeDir(); err == nil {
					viper.AddConfigPath(filepath.Join(home, ".waggle"))
				}
				if err := viper.ReadInConfig(); err != nil {
					var notFound viper.ConfigFileNotFoundError
					if !errors.As(err, &notFound) {
						return fmt.Errorf("failed to read config file: %w", err)
					}
				}
			}
			if err := viper.Unmarshal(opts); err != nil {
				return fmt.Errorf("failed to unmarshal configuration: %w", err)
			}

			if errs := opts.Validate(); len(errs) > 0 {
				for _, err := range errs {
					logger.Error("[Waggled] invalid option: %v", err)
				}
				return fmt.Errorf("invalid configuration: %d error(s)", len(errs))
			}

			cfg, err := config.CreateConfigFromOptions(opts)
			if err != nil {
				return err
			}
			return waggle.Run(cfg)
		},
	}

	opts.AddFlags(cmd.Flags())
	cmd.Flags().String(flagConfig, "", "Path to the waggled configuration file")

	_ = viper.BindPFlags(cmd.Flags())
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	return cmd
}
