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
	"sort"
	"text/tabwriter"

	"github.com/Daskott/minicrm/client"
	"github.com/Daskott/minicrm/googleservice"
	"github.com/spf13/cobra"
)

// newCalendarAPI is replaced in tests
var newCalendarAPI = func(cmd *cobra.Command) (googleservice.GCalendarAPIInterface, error) {
	googleCredentials := config.GetString("secrets.GOOGLE_APPLICATION_CREDENTIALS")
	if googleCredentials == "" {
		return nil, formattedError(
			"must set the env var 'GOOGLE_APPLICATION_CREDENTIALS' or add it to 'secrets' in %s", configFileName())
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	return googleservice.NewGoogleCalendarAPI(
		cmd.Context(),
		googleCredentials,
		filepath.Join(home, ".minicrm-token.json"),
		googleservice.Prompt{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()},
	)
}

func init() {
	rootCmd.AddCommand(createContactsCmd())
}

func createContactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Read your contacts from the minicrm server",
	}

	cmd.AddCommand(createContactsListCmd(), createFollowUpsCmd())
	return cmd
}

func createContactsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every contact",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := apiClient()
			if err != nil {
				return err
			}

			contacts, err := api.Contacts(cmd.Context())
			if err != nil {
				return err
			}

			if len(contacts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No contacts yet")
				return nil
			}

			printContacts(cmd, contacts)
			return nil
		},
	}
}

func createFollowUpsCmd() *cobra.Command {
	var addToCalendar bool

	cmd := &cobra.Command{
		Use:   "follow-ups",
		Short: "Print contacts with a follow-up date, soonest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := apiClient()
			if err != nil {
				return err
			}

			contacts, err := api.Contacts(cmd.Context())
			if err != nil {
				return err
			}

			due := followUps(contacts)
			if len(due) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No follow-ups scheduled")
				return nil
			}

			printContacts(cmd, due)

			if !addToCalendar {
				return nil
			}

			calendarAPI, err := newCalendarAPI(cmd)
			if err != nil {
				return err
			}

			eventIDs, err := googleservice.CreateFollowUpEvents(cmd.Context(), calendarAPI, due)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d follow-ups have been added to your calendar\n", len(eventIDs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&addToCalendar, "calendar", false, "also add each follow-up to your google calendar")
	return cmd
}

// followUps returns the contacts that have a follow-up date, soonest first.
func followUps(contacts []client.Contact) []client.Contact {
	due := []client.Contact{}
	for _, contact := range contacts {
		if contact.NextFollowUpDate != nil && *contact.NextFollowUpDate != "" {
			due = append(due, contact)
		}
	}

	// Dates are YYYY-MM-DD, so they sort as strings
	sort.SliceStable(due, func(i, j int) bool {
		return *due[i].NextFollowUpDate < *due[j].NextFollowUpDate
	})

	return due
}

func printContacts(cmd *cobra.Command, contacts []client.Contact) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE\tNEXT FOLLOW-UP")

	for _, contact := range contacts {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			contact.ID,
			contact.DisplayName(),
			contact.Email,
			valueOrDash(contact.Phone),
			valueOrDash(contact.NextFollowUpDate))
	}

	w.Flush()
}

func valueOrDash(value *string) string {
	if value == nil || *value == "" {
		return "-"
	}
	return *value
}
