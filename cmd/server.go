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
	"errors"
	"os"
	"path/filepath"
	"strings"

	devConfig "github.com/Daskott/minicrm/dev/config"
	"github.com/Daskott/minicrm/server"
	"github.com/Daskott/minicrm/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serverConfigFile string

func init() {
	rootCmd.AddCommand(createServerCmd())
}

func createServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start a minicrm server",
		Long: `The minicrm server exposes the contacts api under /api/v1.

In --dev mode the config is read from ./dev/config/server.yml, which is created
with default values when missing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			serverConfig, err := loadServerConfig()
			if err != nil {
				return err
			}

			server.Start(serverConfig, isDevEnv)
			return nil
		},
	}

	addServerConfigFlag(cmd)
	return cmd
}

func addServerConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&serverConfigFile, "sconfig", "", "config for the server (required unless --dev is set)")
}

// loadServerConfig reads the server config file. Settings can be overridden
// with MINICRM_ prefixed env vars, e.g. MINICRM_SQLITE_PASSPHRASE.
func loadServerConfig() (*viper.Viper, error) {
	serverConfig := viper.New()

	if isDevEnv {
		path, err := devConfigFilePath()
		if err != nil {
			return nil, err
		}
		serverConfigFile = path
	}

	if serverConfigFile == "" {
		return nil, errors.New("\"sconfig\" not set")
	}

	serverConfig.SetConfigFile(serverConfigFile)
	serverConfig.SetEnvPrefix("minicrm")
	serverConfig.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	serverConfig.AutomaticEnv()

	if err := serverConfig.ReadInConfig(); err != nil {
		return nil, formattedError("error reading server config file: %v", err)
	}

	return serverConfig, nil
}

// devConfigFilePath returns ./dev/config/server.yml, writing the default dev
// config there first if it does not exist.
func devConfigFilePath() (string, error) {
	configDir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	devConfigDir := filepath.Join(configDir, "dev", "config")
	if err := utils.CreateDirIfNotExist(devConfigDir); err != nil {
		return "", err
	}

	configFilePath := filepath.Join(devConfigDir, "server.yml")
	if !utils.FileExist(configFilePath) {
		err = os.WriteFile(configFilePath, []byte(devConfig.SERVER_YML), 0600)
		if err != nil {
			return "", err
		}
	}

	return configFilePath, nil
}
