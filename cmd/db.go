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
	"context"
	"fmt"
	"os"

	"github.com/Daskott/minicrm/server"
	"github.com/Daskott/minicrm/server/gstorage"
	"github.com/Daskott/minicrm/server/models"
	"github.com/Daskott/minicrm/shared"
	"github.com/spf13/cobra"
)

// newObjectStore is replaced in tests
var newObjectStore = func(ctx context.Context, credentialsFilePath string) (gstorage.ObjectStore, error) {
	return gstorage.NewGStorage(ctx, credentialsFilePath)
}

func init() {
	rootCmd.AddCommand(createDbCmd())
}

func createDbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Back up or restore the server's contact db on Google Cloud Storage",
	}

	cmd.AddCommand(createDbBackupCmd(), createDbRestoreCmd())
	return cmd
}

func createDbBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Upload the contact db to the configured bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			serverConfig, dbFilePath, err := dbCommandSetup()
			if err != nil {
				return err
			}

			// Fold pending writes into the db file before copying it
			db, err := models.OpenDB(serverConfig.Sqlite.PassPhrase, dbRootDir())
			if err != nil {
				return err
			}
			err = models.Checkpoint(db)
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				sqlDB.Close()
			}
			if err != nil {
				return err
			}

			objects, err := newObjectStore(cmd.Context(), serverConfig.Google.ApplicationCredentials)
			if err != nil {
				return err
			}

			storage := serverConfig.Google.Storage
			location, err := gstorage.Backup(cmd.Context(), objects, storage.Bucket, storage.Prefix, dbFilePath)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Backed up %s to %s\n", dbFilePath, location)
			return nil
		},
	}

	addServerConfigFlag(cmd)
	return cmd
}

func createDbRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace the contact db with its backup from the configured bucket",
		Long:  "Stop the minicrm server before restoring, it keeps the db open while running.",
		RunE: func(cmd *cobra.Command, args []string) error {
			serverConfig, dbFilePath, err := dbCommandSetup()
			if err != nil {
				return err
			}

			objects, err := newObjectStore(cmd.Context(), serverConfig.Google.ApplicationCredentials)
			if err != nil {
				return err
			}

			storage := serverConfig.Google.Storage
			location, err := gstorage.Restore(cmd.Context(), objects, storage.Bucket, storage.Prefix, dbFilePath)
			if err != nil {
				return err
			}

			// The old write-ahead log belongs to the replaced file
			for _, suffix := range []string{"-wal", "-shm"} {
				if err := os.Remove(dbFilePath + suffix); err != nil && !os.IsNotExist(err) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s could not remove %s: %v\n", warningLabel, dbFilePath+suffix, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s from %s\n", dbFilePath, location)
			return nil
		},
	}

	addServerConfigFlag(cmd)
	return cmd
}

func dbCommandSetup() (*shared.ServerConfig, string, error) {
	v, err := loadServerConfig()
	if err != nil {
		return nil, "", err
	}

	serverConfig, err := server.ParseConfig(v)
	if err != nil {
		return nil, "", err
	}

	dbFilePath, err := models.DbFilePath(dbRootDir())
	if err != nil {
		return nil, "", err
	}

	return serverConfig, dbFilePath, nil
}

func dbRootDir() string {
	dir, err := server.ConfigDirectory(isDevEnv)
	cobra.CheckErr(err)
	return dir
}
