package googleservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Daskott/minicrm/client"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	calendarId = "primary"
	dateLayout = "2006-01-02"
)

type GCalendarAPIInterface interface {
	// CreateEvent creates a google calendar event and returns its ID
	CreateEvent(ctx context.Context, event *calendar.Event) (string, error)

	// ClearAllEvents deletes all google calendar events for eventIDs
	ClearAllEvents(ctx context.Context, eventIDs []string) error
}

type GCalendarAPI struct {
	service *calendar.Service
}

// Prompt is where the one-time sign-in link is shown and its authorization
// code read back.
type Prompt struct {
	In  io.Reader
	Out io.Writer
}

// NewGoogleCalendarAPI authorizes against the user's calendar with the OAuth
// client in credentialsFilePath. The token is cached in tokenFilePath and
// the user is only asked to sign in when it can no longer be renewed.
func NewGoogleCalendarAPI(ctx context.Context, credentialsFilePath, tokenFilePath string, prompt Prompt) (*GCalendarAPI, error) {
	b, err := os.ReadFile(credentialsFilePath)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read client secret file")
	}

	config, err := google.ConfigFromJSON(b, calendar.CalendarEventsScope)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse client secret file to config")
	}

	httpClient, err := getClient(ctx, config, tokenFilePath, prompt)
	if err != nil {
		return nil, err
	}

	calendarService, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, errors.Wrap(err, "unable to retrieve Calendar client")
	}

	return &GCalendarAPI{service: calendarService}, nil
}

func (gcalAPI *GCalendarAPI) CreateEvent(ctx context.Context, event *calendar.Event) (string, error) {
	event, err := gcalAPI.service.Events.Insert(calendarId, event).Context(ctx).Do()
	if err != nil {
		return "", err
	}

	return event.Id, nil
}

func (gcalAPI *GCalendarAPI) ClearAllEvents(ctx context.Context, eventIDs []string) error {
	errorMsgs := []string{}

	for _, eventID := range eventIDs {
		err := gcalAPI.service.Events.Delete(calendarId, eventID).Context(ctx).Do()
		if err != nil {
			errorMsgs = append(errorMsgs, fmt.Sprintf("unable to delete event = %v because %v", eventID, err))
		}
	}

	if len(errorMsgs) > 0 {
		return errors.New(strings.Join(errorMsgs, "; "))
	}

	return nil
}

// CreateFollowUpEvents adds an all-day event on each contact's next follow-up
// date. Contacts without one are skipped. Either every event is created or
// the ones already created are removed again.
func CreateFollowUpEvents(ctx context.Context, api GCalendarAPIInterface, contacts []client.Contact) ([]string, error) {
	eventIDs := []string{}

	for _, contact := range contacts {
		event, err := FollowUpEvent(contact)
		if err != nil {
			return nil, rollback(ctx, api, eventIDs, err)
		}
		if event == nil {
			continue
		}

		eventID, err := api.CreateEvent(ctx, event)
		if err != nil {
			return nil, rollback(ctx, api, eventIDs, errors.Wrapf(err, "unable to create event for %s", contact.DisplayName()))
		}
		eventIDs = append(eventIDs, eventID)
	}

	return eventIDs, nil
}

// FollowUpEvent returns the calendar event for contact's next follow-up, or
// nil when there is none.
func FollowUpEvent(contact client.Contact) (*calendar.Event, error) {
	if contact.NextFollowUpDate == nil || *contact.NextFollowUpDate == "" {
		return nil, nil
	}

	day, err := time.Parse(dateLayout, *contact.NextFollowUpDate)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid follow-up date for %s", contact.DisplayName())
	}

	details := []string{contact.Email}
	if contact.Phone != nil && *contact.Phone != "" {
		details = append(details, *contact.Phone)
	}

	return &calendar.Event{
		Summary:     fmt.Sprintf("Follow up with %s", contact.DisplayName()),
		Description: strings.Join(details, "\n"),
		Start:       &calendar.EventDateTime{Date: day.Format(dateLayout)},
		End:         &calendar.EventDateTime{Date: day.AddDate(0, 0, 1).Format(dateLayout)},
		Reminders: &calendar.EventReminders{
			Overrides: []*calendar.EventReminder{
				{
					Method:  "popup",
					Minutes: 10,
				},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}, nil
}

func rollback(ctx context.Context, api GCalendarAPIInterface, eventIDs []string, err error) error {
	if delErr := api.ClearAllEvents(ctx, eventIDs); delErr != nil {
		return errors.Errorf("%v; %v", err, delErr)
	}
	return err
}

// Retrieve a token, saves the token, then returns the generated client.
func getClient(ctx context.Context, config *oauth2.Config, tokenFilePath string, prompt Prompt) (*http.Client, error) {
	token, err := tokenFromFile(tokenFilePath)

	// Renew the cached token when possible, and only fall back to signing in
	// again once it can no longer be renewed
	if err == nil {
		token, err = config.TokenSource(ctx, token).Token()
	}

	if err != nil || !token.Valid() {
		token, err = getTokenFromWeb(ctx, config, prompt)
		if err != nil {
			return nil, err
		}

		if err := saveToken(tokenFilePath, token); err != nil {
			return nil, err
		}
		fmt.Fprintf(prompt.Out, "Saved credential file to: %s\n", tokenFilePath)
	}

	return config.Client(ctx, token), nil
}

// Request a token from the web, then returns the retrieved token.
func getTokenFromWeb(ctx context.Context, config *oauth2.Config, prompt Prompt) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(prompt.Out, "Go to the following link in your browser then type the "+
		"authorization code: \n%v\n", authURL)

	var authCode string
	if _, err := fmt.Fscan(prompt.In, &authCode); err != nil {
		return nil, errors.Wrap(err, "unable to read authorization code")
	}

	tok, err := config.Exchange(ctx, authCode)
	if err != nil {
		return nil, errors.Wrap(err, "unable to retrieve token from web")
	}
	return tok, nil
}

// Retrieves a token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// Saves a token to a file path.
func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return errors.Wrap(err, "unable to cache oauth token")
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
