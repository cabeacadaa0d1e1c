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
	"github.com/Daskott/minicrm/client/tui"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(createUICmd())
}

func createUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Browse and edit your contacts in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := apiClient()
			if err != nil {
				return err
			}

			return tui.Run(api)
		},
	}
}
