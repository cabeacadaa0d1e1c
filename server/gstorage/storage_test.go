package gstorage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore keeps objects in a map keyed by "bucket/object".
type memoryStore struct {
	objects map[string][]byte
}

func (m *memoryStore) UploadFile(ctx context.Context, bucket, object, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	m.objects[bucket+"/"+object] = data
	return nil
}

func (m *memoryStore) DownloadFile(ctx context.Context, bucket, object, destFilePath string) error {
	data, ok := m.objects[bucket+"/"+object]
	if !ok {
		return ErrObjectNotExist
	}
	return writeFileAtomically(destFilePath, bytes.NewReader(data))
}

func TestBackupAndRestore(t *testing.T) {
	store := &memoryStore{objects: map[string][]byte{}}
	dbFilePath := filepath.Join(t.TempDir(), "minicrm.db")
	require.Nil(t, os.WriteFile(dbFilePath, []byte("v1"), 0600))

	location, err := Backup(context.Background(), store, "crm-bucket", "nightly", dbFilePath)
	require.Nil(t, err)
	assert.Equal(t, "gs://crm-bucket/nightly/minicrm.db", location)
	assert.Equal(t, []byte("v1"), store.objects["crm-bucket/nightly/minicrm.db"])

	require.Nil(t, os.WriteFile(dbFilePath, []byte("v2"), 0600))

	_, err = Restore(context.Background(), store, "crm-bucket", "nightly", dbFilePath)
	require.Nil(t, err)

	data, err := os.ReadFile(dbFilePath)
	require.Nil(t, err)
	assert.Equal(t, []byte("v1"), data)
}

func TestRestoreMissingBackup(t *testing.T) {
	store := &memoryStore{objects: map[string][]byte{}}
	dbFilePath := filepath.Join(t.TempDir(), "minicrm.db")
	require.Nil(t, os.WriteFile(dbFilePath, []byte("current"), 0600))

	_, err := Restore(context.Background(), store, "crm-bucket", "", dbFilePath)
	assert.ErrorIs(t, err, ErrObjectNotExist)

	data, err := os.ReadFile(dbFilePath)
	require.Nil(t, err)
	assert.Equal(t, []byte("current"), data, "Should keep the db when there is nothing to restore")
}

func TestBackupRequiresBucket(t *testing.T) {
	_, err := Backup(context.Background(), &memoryStore{}, "", "prefix", "minicrm.db")
	assert.NotNil(t, err)
}

func TestBackupObjectName(t *testing.T) {
	assert.Equal(t, "minicrm.db", BackupObjectName("", "/home/ada/minicrm/minicrm.db"))
	assert.Equal(t, "prod/minicrm.db", BackupObjectName("prod/", "/home/ada/minicrm/minicrm.db"))
}
