/*
Copyright © 2021 Edmond Cotterell

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Daskott/minicrm/client"
	"github.com/Daskott/minicrm/colors"
	devConfig "github.com/Daskott/minicrm/dev/config"
	"github.com/Daskott/minicrm/shared"
	"github.com/Daskott/minicrm/version"
	"github.com/go-playground/validator"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	config  *viper.Viper

	isDevEnv bool

	warningLabel = colors.Yellow("Warning:")
)

// rootCmd represents the base command when called without any subcommands
var rootCmd *cobra.Command

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd = createRootCmd()
	rootCmd.Version = fmt.Sprintf("v%s", version.Version)
}

func createRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use: "minicrm",
		Short: `minicrm keeps track of the people you work with.

It runs a small JSON api over an encrypted sqlite db, and ships a terminal
ui and commands to read and manage your contacts from the command line.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.minicrm.yaml)")
	cmd.PersistentFlags().BoolVarP(&isDevEnv, "dev", "", false, "run in development mode")

	return cmd
}

// initConfig reads in the client config file and ENV variables if set.
func initConfig() {
	config = viper.New()

	if cfgFile != "" {
		// Use config file from the flag.
		config.SetConfigFile(cfgFile)
	} else {
		configName, configDir, err := defaultCfgNameAndDir()
		cobra.CheckErr(err)

		// If config file is not found, create one using DEFAULT_CLIENT_YML
		configFilePath := filepath.Join(configDir, configName)
		if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
			err = os.WriteFile(configFilePath, []byte(devConfig.DEFAULT_CLIENT_YML), 0600)
			cobra.CheckErr(err)
		}

		config.AddConfigPath(configDir)
		config.SetConfigType("yaml")
		config.SetConfigName(configName)
	}

	// MINICRM_API_URL overrides whatever is in the config file
	config.BindEnv("api.url", "MINICRM_API_URL")

	// BIND secrets.GOOGLE... to GOOGLE_APPLICATION_CREDENTIALS env, so the value doesn't need to be
	// stored in the .minicrm.yaml config, but can be read from the system ENV var.
	config.BindEnv("secrets.GOOGLE_APPLICATION_CREDENTIALS", "GOOGLE_APPLICATION_CREDENTIALS")
	config.AutomaticEnv()

	// If a config file is found, read it in.
	if err := config.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", config.ConfigFileUsed())
	}
}

func defaultCfgNameAndDir() (configName string, configDir string, err error) {
	configName = ".minicrm.yaml"

	// Use home directory for production
	configDir, err = os.UserHomeDir()
	if err != nil {
		return "", "", err
	}

	if isDevEnv {
		configName = ".minicrm.dev.yaml"
		configDir, err = os.Getwd()
		if err != nil {
			return "", "", err
		}
	}

	return configName, configDir, err
}

// apiClient builds a client for the api configured in the client config.
func apiClient() (*client.Client, error) {
	clientConfig := shared.ClientConfig{}
	if config != nil {
		if err := config.Unmarshal(&clientConfig); err != nil {
			return nil, formattedError("invalid config %s: %v", config.ConfigFileUsed(), err)
		}
	}

	if err := validator.New().Struct(clientConfig); err != nil {
		return nil, formattedError("must set a valid 'api.url' in %s", configFileName())
	}

	timeout := clientConfig.API.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return client.New(clientConfig.API.URL, timeout), nil
}

func configFileName() string {
	if config == nil || config.ConfigFileUsed() == "" {
		return "$HOME/.minicrm.yaml"
	}
	return config.ConfigFileUsed()
}

func formattedError(format string, a ...interface{}) error {
	return fmt.Errorf(colors.Red(format), a...)
}
