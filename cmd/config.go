package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/knagata/kadai/internal/config"
	"github.com/knagata/kadai/internal/task"
)

const (
	configName = ".kadai"
	envPrefix  = "KADAI"
)

// GlobalConfig holds the application configuration instance populated by
// InitConfig.
var GlobalConfig config.Config

// InitConfig reads in the config file and ENV variables if set.
func InitConfig() {
	// Load .env file first if present. It's okay if it doesn't exist.
	_ = godotenv.Load()

	// Environment variable handling must be set up before reading the
	// config file so that env vars can influence config loading.
	viper.SetEnvPrefix(envPrefix) // e.g., KADAI_SERVER_PORT
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfgFileFlag := viper.GetString("config")
	if cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(".")        // ./.kadai.yaml
		viper.AddConfigPath(home)       // $HOME/.kadai.yaml
		viper.SetConfigName(configName)
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFileFlag != "" {
				fmt.Fprintln(os.Stderr, "Error: Specified config file not found:", cfgFileFlag)
			} else if viper.GetBool("verbose") {
				fmt.Fprintln(os.Stderr, "No config file found. Using defaults and environment variables.")
			}
		} else {
			fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
		}
	}

	viper.SetDefault("server.port", config.DefaultPort)
	viper.SetDefault("server.corsOrigins", config.DefaultCORSOrigins)
	viper.SetDefault("database.path", config.DefaultDatabasePath)
	viper.SetDefault("log.level", config.DefaultLogLevel)
	viper.SetDefault("log.file", "")

	if err := viper.Unmarshal(&GlobalConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling config: %s\n", err)
		os.Exit(1)
	}

	if err := task.ValidateStruct(&GlobalConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration validation error: %s\n", err)
		os.Exit(1)
	}
}

// GetConfig returns a pointer to the global config.Config instance.
func GetConfig() *config.Config {
	return &GlobalConfig
}
