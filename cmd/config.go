package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"projdump/pkg/dump"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "PROJDUMP"
	configFileName = ".projdump.yaml"

	flagOutput      = "output"
	flagIncludeExt  = "include-ext"
	flagExcludeDir  = "exclude-dir"
	flagExcludeExt  = "exclude-ext"
	flagMaxBytes    = "max-bytes"
	flagNoTree      = "no-tree"
	flagLineNumbers = "with-line-numbers"
	flagNoGitignore = "no-gitignore"
	flagWorkers     = "workers"
	flagTokens      = "tokens"
	flagModel       = "model"
	flagCopy        = "copy"
	flagVerbose     = "verbose"
	flagConfig      = "config"
)

// loadSettings layers flags over PROJDUMP_* environment variables over the
// configuration file over flag defaults.
func loadSettings(cmd *cobra.Command) (*viper.Viper, error) {
	settings := viper.New()
	if err := settings.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	settings.SetEnvPrefix(envPrefix)
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()

	explicit, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("error reading flags: %w", err)
	}
	path, err := resolveConfigPath(explicit)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return settings, nil
	}
	settings.SetConfigFile(path)
	if readErr := settings.ReadInConfig(); readErr != nil {
		return nil, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	return settings, nil
}

// resolveConfigPath returns the explicit path, or the default file in the
// working directory when it exists, or "" when there is nothing to read.
func resolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		info, err := os.Stat(explicit)
		if err != nil {
			return "", fmt.Errorf("stat configuration %s: %w", explicit, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("configuration path %s is a directory", explicit)
		}
		return explicit, nil
	}

	workingDirectory, err := os.Getwd()
	if err != nil {
		return "", nil
	}
	candidate := filepath.Join(workingDirectory, configFileName)
	if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
		return candidate, nil
	}
	return "", nil
}

// argumentsFromSettings maps the resolved settings onto dump.Arguments.
func argumentsFromSettings(settings *viper.Viper, root string) dump.Arguments {
	args := dump.Arguments{
		Root:        root,
		Output:      settings.GetString(flagOutput),
		ExcludeDirs: settings.GetStringSlice(flagExcludeDir),
		ExcludeExts: settings.GetStringSlice(flagExcludeExt),
		MaxBytes:    settings.GetInt64(flagMaxBytes),
		NoTree:      settings.GetBool(flagNoTree),
		LineNumbers: settings.GetBool(flagLineNumbers),
		NoGitignore: settings.GetBool(flagNoGitignore),
		Workers:     settings.GetInt(flagWorkers),
	}
	// Only a configured allow-list restricts selection; an unset one admits all.
	if settings.IsSet(flagIncludeExt) {
		args.IncludeExts = append([]string{}, settings.GetStringSlice(flagIncludeExt)...)
	}
	return args
}
