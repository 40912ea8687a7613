package gorm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskstash/taskstash"
)

func TestCreateNote(t *testing.T) {
	db := newTestDB(t)
	repo := NewNoteRepository(db)
	owner := newTestAccount(t, db, "owner@x.com")

	note, err := repo.Create(owner.ID, taskstash.NewNote{Title: "groceries", Body: "milk, eggs"})
	require.NoError(t, err)

	assert.NotZero(t, note.ID)
	assert.Equal(t, owner.ID, note.AccountID)
	assert.Equal(t, "groceries", note.Title)
	assert.Equal(t, "milk, eggs", note.Body)
	assert.False(t, note.CreatedAt.IsZero())
}

func TestNoteOwnershipScoping(t *testing.T) {
	db := newTestDB(t)
	repo := NewNoteRepository(db)

	owner := newTestAccount(t, db, "owner@x.com")
	intruder := newTestAccount(t, db, "intruder@x.com")

	note, err := repo.Create(owner.ID, taskstash.NewNote{Title: "private", Body: "secret"})
	require.NoError(t, err)

	page, err := repo.List(intruder.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Notes)
	assert.False(t, page.HasMore)

	_, err = repo.Update(intruder.ID, taskstash.EditNote{ID: note.ID, Title: "stolen", Body: "x"})
	assert.Equal(t, taskstash.ErrNoteNotFound, err)

	deleted, err := repo.Delete(intruder.ID, note.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	page, err = repo.List(owner.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Notes, 1)
	assert.Equal(t, "private", page.Notes[0].Title)
	assert.Equal(t, "secret", page.Notes[0].Body)
}

func TestNoteListPagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewNoteRepository(db)
	owner := newTestAccount(t, db, "owner@x.com")

	for i := 1; i <= 3; i++ {
		_, err := repo.Create(owner.ID, taskstash.NewNote{
			Title: fmt.Sprintf("note %d", i),
			Body:  "body",
		})
		require.NoError(t, err)
	}

	page, err := repo.List(owner.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, page.Notes, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, "note 3", page.Notes[0].Title)
	assert.Equal(t, "note 2", page.Notes[1].Title)

	page, err = repo.List(owner.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Notes, 1)
	assert.False(t, page.HasMore)
	assert.Equal(t, "note 1", page.Notes[0].Title)
}

func TestNoteUpdateReplacesContent(t *testing.T) {
	db := newTestDB(t)
	repo := NewNoteRepository(db)
	owner := newTestAccount(t, db, "owner@x.com")

	created, err := repo.Create(owner.ID, taskstash.NewNote{Title: "draft", Body: "v1"})
	require.NoError(t, err)

	updated, err := repo.Update(owner.ID, taskstash.EditNote{ID: created.ID, Title: "final", Body: "v2"})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, "v2", updated.Body)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	_, err = repo.Update(owner.ID, taskstash.EditNote{ID: 9999, Title: "x", Body: "y"})
	assert.Equal(t, taskstash.ErrNoteNotFound, err)
}

func TestNoteDeleteIdempotence(t *testing.T) {
	db := newTestDB(t)
	repo := NewNoteRepository(db)
	owner := newTestAccount(t, db, "owner@x.com")

	note, err := repo.Create(owner.ID, taskstash.NewNote{Title: "gone soon", Body: "x"})
	require.NoError(t, err)

	deleted, err := repo.Delete(owner.ID, note.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(owner.ID, note.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestAccountDeleteCascadesNotes(t *testing.T) {
	db := newTestDB(t)
	repo := NewNoteRepository(db)
	owner := newTestAccount(t, db, "owner@x.com")

	_, err := repo.Create(owner.ID, taskstash.NewNote{Title: "orphan", Body: "x"})
	require.NoError(t, err)

	require.NoError(t, db.Delete(&accountRecord{}, owner.ID).Error)

	var count int64
	require.NoError(t, db.Model(&noteRecord{}).Where("account_id = ?", owner.ID).Count(&count).Error)
	assert.Zero(t, count)
}
