package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"radar/internal/auth"
	"radar/internal/config"
	radarerrors "radar/internal/errors"
	"radar/internal/logging"
)

var (
	initForce       bool
	initStoreToken  bool
	initDeleteToken bool
	initToken       string
	initOwner       string
	initRepo        string
	initSource      string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize radar configuration",
	Long: `Creates .radar/config.toml with default configuration in the current
repository root.

--store-token saves a GitHub token (from --token or GITHUB_TOKEN) in the OS
keyring so later runs need neither.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration")
	initCmd.Flags().BoolVar(&initStoreToken, "store-token", false, "Store the GitHub token in the OS keyring")
	initCmd.Flags().BoolVar(&initDeleteToken, "delete-token", false, "Remove the GitHub token from the OS keyring")
	initCmd.Flags().StringVarP(&initToken, "token", "t", "", "Token to store with --store-token")
	initCmd.Flags().StringVarP(&initOwner, "user", "u", "", "Default repository owner")
	initCmd.Flags().StringVarP(&initRepo, "repo", "r", "", "Default repository name")
	initCmd.Flags().StringVar(&initSource, "source", "", "Default change source: github or git")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.LevelFromVerbosity(verbosity, quiet),
	})

	cwd, err := os.Getwd()
	if err != nil {
		return radarerrors.NewRadarError(radarerrors.InternalError, "Failed to get current directory", err, nil)
	}
	if _, err := config.LoadDotEnv(cwd); err != nil {
		logger.Warn("Failed to load .env file", map[string]interface{}{"error": err.Error()})
	}

	if err := writeInitialConfig(cwd, logger); err != nil {
		return err
	}

	keyring := auth.NewKeyring(logger)
	if initDeleteToken {
		if err := keyring.DeleteGitHubToken(); err != nil {
			return radarerrors.NewRadarError(radarerrors.InternalError, "Failed to remove token from keyring", err, nil)
		}
		fmt.Println("GitHub token removed from the OS keyring.")
	}
	if initStoreToken {
		if err := storeToken(keyring, logger); err != nil {
			return err
		}
	}
	return nil
}

func writeInitialConfig(repoRoot string, logger *logging.Logger) error {
	path := config.ConfigPath(repoRoot)
	if _, statErr := os.Stat(path); statErr == nil && !initForce {
		fmt.Println("Radar already initialized.")
		fmt.Printf("Configuration at: %s\n", path)
		fmt.Println("\nRun 'radar init --force' to reinitialize.")
		return nil
	}

	cfg := config.DefaultConfig()
	cfg.RepoRoot = "."
	if initOwner != "" {
		cfg.GitHub.Owner = initOwner
	}
	if initRepo != "" {
		cfg.GitHub.Repo = initRepo
	}
	if initSource != "" {
		cfg.Source.Kind = initSource
	}
	if err := cfg.Validate(); err != nil {
		return configError(err)
	}

	if err := cfg.Save(repoRoot); err != nil {
		return radarerrors.NewRadarError(radarerrors.InternalError, "Failed to write config file", err, nil).WithPath(path)
	}

	logger.Info("Radar initialized", map[string]interface{}{
		"config_path": path,
	})

	fmt.Println("Radar initialized successfully!")
	fmt.Printf("Configuration written to: %s\n", path)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'radar report -u <owner> -r <repo>' to rank a GitHub repository")
	fmt.Println("  2. Run 'radar report --source=git' to rank this clone")
	return nil
}

func storeToken(keyring *auth.Keyring, logger *logging.Logger) error {
	token := initToken
	if token == "" {
		token = os.Getenv(auth.EnvVar)
	}
	if token == "" {
		return radarerrors.NewRadarError(
			radarerrors.TokenMissing,
			"no token to store: pass --token or set "+auth.EnvVar,
			auth.ErrEmptyToken,
			nil,
		)
	}
	if !auth.LooksLikeGitHubToken(token) {
		logger.Warn("Token does not look like a GitHub token", map[string]interface{}{
			"token": auth.MaskToken(token),
		})
	}

	if err := keyring.SetGitHubToken(token); err != nil {
		return radarerrors.NewRadarError(
			radarerrors.InternalError,
			"Failed to store token in the OS keyring",
			err,
			[]radarerrors.FixAction{{
				Type:        radarerrors.SetEnv,
				Variable:    auth.EnvVar,
				Description: "Export the token instead",
			}},
		)
	}
	fmt.Printf("Stored GitHub token %s in the OS keyring.\n", auth.MaskToken(token))
	return nil
}
