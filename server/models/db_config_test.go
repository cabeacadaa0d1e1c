package models

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDbDSNKeepsPassPhraseIntact(t *testing.T) {
	passPhrases := []string{"secret", "p&ss#w%rd", "a b+c=d", "100%"}

	for _, passPhrase := range passPhrases {
		dsn, err := url.Parse(dbDSN("/tmp/minicrm.db", passPhrase))
		require.Nil(t, err, passPhrase)

		query := dsn.Query()
		assert.Equal(t, passPhrase, query.Get("_pragma_key"))
		assert.Equal(t, "4096", query.Get("_pragma_cipher_page_size"), "Should not split %q into other pragmas", passPhrase)
		assert.Equal(t, "WAL", query.Get("_journal_mode"))
		assert.Equal(t, "1", query.Get("_foreign_keys"))
	}
}

func TestOpenDBWithSpecialCharactersInPassPhrase(t *testing.T) {
	rootDir := t.TempDir()
	passPhrase := "p&ss#w%rd"

	db, err := OpenDB(passPhrase, rootDir)
	require.Nil(t, err)

	ada, err := NewStore(db).CreateContact(context.Background(), adaParams())
	require.Nil(t, err)

	sqlDB, err := db.DB()
	require.Nil(t, err)
	require.Nil(t, sqlDB.Close())

	db, err = OpenDB(passPhrase, rootDir)
	require.Nil(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	found, err := NewStore(db).FindContact(context.Background(), ada.ID)
	require.Nil(t, err)
	assert.Equal(t, "Ada", found.FirstName)
}
