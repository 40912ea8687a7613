package gorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskstash/taskstash"
)

func TestAccountCreateAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)

	acc, err := repo.Create("a@x.com", "hash")
	require.NoError(t, err)
	assert.NotZero(t, acc.ID)
	assert.False(t, acc.CreatedAt.IsZero())

	found, err := repo.FindByEmail("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, found.ID)
	assert.Equal(t, "hash", found.PasswordHash)

	_, err = repo.FindByEmail("missing@x.com")
	assert.Equal(t, taskstash.ErrAccountNotFound, err)
}

func TestAccountDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)

	_, err := repo.Create("a@x.com", "hash")
	require.NoError(t, err)

	_, err = repo.Create("a@x.com", "other")
	assert.Equal(t, taskstash.ErrEmailTaken, err)
}
