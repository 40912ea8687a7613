package gorm

import (
	"time"

	stdgorm "gorm.io/gorm"

	"github.com/taskstash/taskstash"
)

type noteRecord struct {
	ID        uint64 `gorm:"primaryKey"`
	AccountID uint64 `gorm:"index;not null"`
	Title     string `gorm:"not null"`
	Body      string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (noteRecord) TableName() string { return "note" }

type noteRepository struct {
	db *stdgorm.DB
}

func NewNoteRepository(db *stdgorm.DB) taskstash.NoteRepository {
	return &noteRepository{db}
}

func (n *noteRepository) Create(accountID uint64, input taskstash.NewNote) (taskstash.Note, error) {
	record := noteRecord{
		AccountID: accountID,
		Title:     input.Title,
		Body:      input.Body,
	}

	result := n.db.Create(&record)
	if result.Error != nil {
		return taskstash.Note{}, result.Error
	}

	return record.note(), nil
}

func (n *noteRepository) List(accountID uint64, limit, offset int) (taskstash.NotePage, error) {
	var records []noteRecord

	// One row beyond the page size detects a further page without a
	// separate count query.
	result := n.db.
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Offset(offset).
		Find(&records)
	if result.Error != nil {
		return taskstash.NotePage{}, result.Error
	}

	hasMore := len(records) == limit+1
	if hasMore {
		records = records[:limit]
	}

	notes := make([]taskstash.Note, 0, len(records))
	for _, r := range records {
		notes = append(notes, r.note())
	}

	return taskstash.NotePage{Notes: notes, HasMore: hasMore}, nil
}

// Update replaces the note's content wholesale. The ownership check and the
// mutation happen in a single statement, so zero affected rows means the note
// does not exist or belongs to someone else.
func (n *noteRepository) Update(accountID uint64, input taskstash.EditNote) (taskstash.Note, error) {
	result := n.db.Model(&noteRecord{}).
		Where("id = ? AND account_id = ?", input.ID, accountID).
		Updates(map[string]interface{}{
			"title":      input.Title,
			"body":       input.Body,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return taskstash.Note{}, result.Error
	}
	if result.RowsAffected == 0 {
		return taskstash.Note{}, taskstash.ErrNoteNotFound
	}

	var record noteRecord
	result = n.db.Where("id = ? AND account_id = ?", input.ID, accountID).First(&record)
	if result.Error != nil {
		return taskstash.Note{}, result.Error
	}

	return record.note(), nil
}

func (n *noteRepository) Delete(accountID, noteID uint64) (bool, error) {
	result := n.db.
		Where("id = ? AND account_id = ?", noteID, accountID).
		Delete(&noteRecord{})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r noteRecord) note() taskstash.Note {
	return taskstash.Note{
		ID:        r.ID,
		AccountID: r.AccountID,
		Title:     r.Title,
		Body:      r.Body,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
