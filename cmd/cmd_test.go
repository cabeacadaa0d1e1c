package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Daskott/minicrm/googleservice"
	"github.com/Daskott/minicrm/server"
	"github.com/Daskott/minicrm/server/gstorage"
	"github.com/Daskott/minicrm/server/models"
	"github.com/Daskott/minicrm/shared"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestDataProvider []struct {
	description string
	args        []string
	expectedOut string
}

// useConfigFile points the client config at a temp file holding content for
// the duration of the test.
func useConfigFile(t *testing.T, content string) {
	savedCfgFile := cfgFile
	t.Cleanup(func() { cfgFile = savedCfgFile })

	cfgFile = filepath.Join(t.TempDir(), "minicrm.yaml")
	require.Nil(t, os.WriteFile(cfgFile, []byte(content), 0600))
}

func execute(cmd *cobra.Command, args ...string) string {
	buff := new(bytes.Buffer)
	cmd.SetOut(buff)
	cmd.SetErr(buff)
	cmd.SetArgs(args)
	cmd.Execute()
	return buff.String()
}

func TestContactsListCmd(t *testing.T) {
	db, err := models.InitializeTestDb()
	require.Nil(t, err)
	store := models.NewStore(db)

	ts := httptest.NewServer(server.NewRouter(store, &shared.ServerConfig{}))
	defer ts.Close()

	useConfigFile(t, fmt.Sprintf("api:\n  url: %s%s\n", ts.URL, server.APIPrefix))

	out := execute(createContactsCmd(), "list")
	assert.Contains(t, out, "No contacts yet")

	_, err = store.CreateContact(context.Background(), models.ContactParams{
		FirstName: models.NewOptionalString("Ada"),
		LastName:  models.NewOptionalString("Lovelace"),
		Email:     models.NewOptionalString("ada@example.com"),
		Company:   models.NewOptionalString("Analytical Engines"),
	})
	require.Nil(t, err)

	out = execute(createContactsCmd(), "list")
	assert.Contains(t, out, "Ada Lovelace (Analytical Engines)")
	assert.Contains(t, out, "ada@example.com")
}

func TestContactsListCmdErrors(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	cases := TestDataProvider{
		{
			description: "Should fail without an api url",
			args:        []string{"list"},
			expectedOut: "must set a valid 'api.url'",
		},
		{
			description: "Should report server errors",
			args:        []string{"list"},
			expectedOut: "API Error: 500 Internal Server Error",
		},
	}

	configs := []string{"api:\n  timeout: 1s\n", fmt.Sprintf("api:\n  url: %s\n", failing.URL)}

	for i, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			useConfigFile(t, configs[i])

			actualOut := execute(createContactsCmd(), c.args...)
			if !strings.Contains(actualOut, c.expectedOut) {
				t.Errorf("Expected: \n\"%s\" \nTo contain: \n\"%s\"", actualOut, c.expectedOut)
			}
		})
	}
}

type memoryObjects struct {
	objects map[string][]byte
}

func (m *memoryObjects) UploadFile(ctx context.Context, bucket, object, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	m.objects[bucket+"/"+object] = data
	return nil
}

func (m *memoryObjects) DownloadFile(ctx context.Context, bucket, object, destFilePath string) error {
	data, ok := m.objects[bucket+"/"+object]
	if !ok {
		return gstorage.ErrObjectNotExist
	}
	return os.WriteFile(destFilePath, data, 0600)
}

func TestDbBackupAndRestoreCmds(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	useConfigFile(t, "api:\n  url: http://localhost:3000/api/v1\n")

	sconfigPath := filepath.Join(t.TempDir(), "server.yml")
	require.Nil(t, os.WriteFile(sconfigPath, []byte(`
crm:
  listener:
    port: 3000
sqlite:
  passPhrase: secret
google:
  storage:
    bucket: crm-bucket
    prefix: test
`), 0600))

	objects := &memoryObjects{objects: map[string][]byte{}}
	savedObjectStore := newObjectStore
	newObjectStore = func(ctx context.Context, credentialsFilePath string) (gstorage.ObjectStore, error) {
		return objects, nil
	}
	defer func() { newObjectStore = savedObjectStore }()

	out := execute(createDbCmd(), "restore", "--sconfig", sconfigPath)
	assert.Contains(t, out, "object doesn't exist")

	out = execute(createDbCmd(), "backup", "--sconfig", sconfigPath)
	assert.Contains(t, out, "gs://crm-bucket/test/minicrm.db")
	assert.NotEmpty(t, objects.objects["crm-bucket/test/minicrm.db"])

	out = execute(createDbCmd(), "restore", "--sconfig", sconfigPath)
	assert.Contains(t, out, "Restored")
	assert.FileExists(t, filepath.Join(home, "minicrm", "db", models.DB_NAME))
}

func TestFollowUpsCmd(t *testing.T) {
	db, err := models.InitializeTestDb()
	require.Nil(t, err)
	store := models.NewStore(db)

	ts := httptest.NewServer(server.NewRouter(store, &shared.ServerConfig{}))
	defer ts.Close()

	useConfigFile(t, fmt.Sprintf("api:\n  url: %s%s\n", ts.URL, server.APIPrefix))

	out := execute(createContactsCmd(), "follow-ups")
	assert.Contains(t, out, "No follow-ups scheduled")

	for _, c := range []struct{ name, date string }{{"Ada", "2026-03-01"}, {"Grace", ""}, {"Alan", "2026-01-15"}} {
		params := models.ContactParams{
			FirstName: models.NewOptionalString(c.name),
			LastName:  models.NewOptionalString("Test"),
			Email:     models.NewOptionalString(c.name + "@example.com"),
		}
		if c.date != "" {
			params.NextFollowUpDate = models.NewOptionalString(c.date)
		}
		_, err = store.CreateContact(context.Background(), params)
		require.Nil(t, err)
	}

	calendarAPI := googleservice.NewGCalendarAPIStub()
	savedCalendarAPI := newCalendarAPI
	newCalendarAPI = func(cmd *cobra.Command) (googleservice.GCalendarAPIInterface, error) {
		return calendarAPI, nil
	}
	defer func() { newCalendarAPI = savedCalendarAPI }()

	out = execute(createContactsCmd(), "follow-ups")
	assert.NotContains(t, out, "Grace")
	assert.Less(t, strings.Index(out, "Alan Test"), strings.Index(out, "Ada Test"), "Should list the soonest follow-up first")
	assert.Empty(t, calendarAPI.Events)

	out = execute(createContactsCmd(), "follow-ups", "--calendar")
	assert.Contains(t, out, "2 follow-ups have been added to your calendar")
	assert.Len(t, calendarAPI.Events, 2)
}
