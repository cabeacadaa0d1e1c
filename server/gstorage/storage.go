package gstorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

var ErrObjectNotExist = storage.ErrObjectNotExist

// ObjectStore is the part of a bucket client the db backups need.
type ObjectStore interface {
	UploadFile(ctx context.Context, bucket, object, filePath string) error
	DownloadFile(ctx context.Context, bucket, object, destFilePath string) error
}

type GStorage struct {
	storageClient *storage.Client
}

func NewGStorage(ctx context.Context, credentialsFilePath string) (*GStorage, error) {
	var client *storage.Client
	var err error

	if credentialsFilePath != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFilePath))
	} else {
		client, err = storage.NewClient(ctx)
	}

	if err != nil {
		return nil, errors.Wrap(err, "NewGStorage")
	}

	return &GStorage{storageClient: client}, nil
}

func (gs *GStorage) Close() error {
	return gs.storageClient.Close()
}

// UploadFile uploads the file at filePath as object.
func (gs *GStorage) UploadFile(ctx context.Context, bucket, object, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return errors.Wrap(err, "os.Open")
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, time.Second*50)
	defer cancel()

	wc := gs.storageClient.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err = io.Copy(wc, f); err != nil {
		wc.Close()
		return errors.Wrap(err, "io.Copy")
	}
	if err := wc.Close(); err != nil {
		return errors.Wrap(err, "Writer.Close")
	}

	return nil
}

// DownloadFile downloads object into destFilePath. The destination is only
// replaced once the whole object has been read.
func (gs *GStorage) DownloadFile(ctx context.Context, bucket, object, destFilePath string) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*50)
	defer cancel()

	rc, err := gs.storageClient.Bucket(bucket).Object(object).NewReader(ctx)
	if err == storage.ErrObjectNotExist {
		return err
	}
	if err != nil {
		return errors.Wrapf(err, "Object(%q).NewReader", object)
	}
	defer rc.Close()

	return writeFileAtomically(destFilePath, rc)
}

// BackupObjectName is where the backup of dbFilePath lives in a bucket.
func BackupObjectName(prefix, dbFilePath string) string {
	return path.Join(prefix, filepath.Base(dbFilePath))
}

// Backup uploads the db file to bucket under prefix.
func Backup(ctx context.Context, objects ObjectStore, bucket, prefix, dbFilePath string) (string, error) {
	if bucket == "" {
		return "", errors.New("no storage bucket configured")
	}

	object := BackupObjectName(prefix, dbFilePath)
	err := objects.UploadFile(ctx, bucket, object, dbFilePath)
	if err != nil {
		return "", errors.Wrapf(err, "backup %v", dbFilePath)
	}

	return fmt.Sprintf("gs://%s/%s", bucket, object), nil
}

// Restore replaces the db file with its backup from bucket.
func Restore(ctx context.Context, objects ObjectStore, bucket, prefix, dbFilePath string) (string, error) {
	if bucket == "" {
		return "", errors.New("no storage bucket configured")
	}

	object := BackupObjectName(prefix, dbFilePath)
	err := objects.DownloadFile(ctx, bucket, object, dbFilePath)
	if err != nil {
		return "", errors.Wrapf(err, "restore %v", dbFilePath)
	}

	return fmt.Sprintf("gs://%s/%s", bucket, object), nil
}

func writeFileAtomically(destFilePath string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(destFilePath), filepath.Base(destFilePath)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "os.CreateTemp")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return errors.Wrap(err, "io.Copy")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "f.Close")
	}

	return os.Rename(tmp.Name(), destFilePath)
}
