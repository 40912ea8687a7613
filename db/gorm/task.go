package gorm

import (
	"strings"
	"time"

	stdgorm "gorm.io/gorm"

	"github.com/taskstash/taskstash"
)

type taskRecord struct {
	ID          uint64 `gorm:"primaryKey"`
	AccountID   uint64 `gorm:"index;not null"`
	Title       string `gorm:"not null"`
	Description string
	Completed   bool `gorm:"not null;default:false"`
	Priority    int  `gorm:"not null;default:0"`
	Tags        string
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (taskRecord) TableName() string { return "task" }

type taskRepository struct {
	db *stdgorm.DB
}

func NewTaskRepository(db *stdgorm.DB) taskstash.TaskRepository {
	return &taskRepository{db}
}

func (t *taskRepository) Create(accountID uint64, input taskstash.NewTask) (taskstash.Task, error) {
	record := taskRecord{
		AccountID:   accountID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Tags:        joinTags(input.Tags),
		DueDate:     input.DueDate,
	}

	result := t.db.Create(&record)
	if result.Error != nil {
		return taskstash.Task{}, result.Error
	}

	return record.task(), nil
}

func (t *taskRepository) List(accountID uint64, limit, offset int) (taskstash.TaskPage, error) {
	var records []taskRecord

	// One row beyond the page size detects a further page without a
	// separate count query.
	result := t.db.
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Offset(offset).
		Find(&records)
	if result.Error != nil {
		return taskstash.TaskPage{}, result.Error
	}

	hasMore := len(records) == limit+1
	if hasMore {
		records = records[:limit]
	}

	tasks := make([]taskstash.Task, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, r.task())
	}

	return taskstash.TaskPage{Tasks: tasks, HasMore: hasMore}, nil
}

// Update mutates only the fields present in the input; omitted fields keep
// their stored values. The ownership check and the mutation happen in a
// single statement, so zero affected rows means the task does not exist or
// belongs to someone else, and the two are indistinguishable.
func (t *taskRepository) Update(accountID uint64, input taskstash.EditTask) (taskstash.Task, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Completed != nil {
		updates["completed"] = *input.Completed
	}
	if input.Priority != nil {
		updates["priority"] = *input.Priority
	}
	if input.Tags != nil {
		updates["tags"] = joinTags(*input.Tags)
	}
	if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}

	result := t.db.Model(&taskRecord{}).
		Where("id = ? AND account_id = ?", input.ID, accountID).
		Updates(updates)
	if result.Error != nil {
		return taskstash.Task{}, result.Error
	}
	if result.RowsAffected == 0 {
		return taskstash.Task{}, taskstash.ErrTaskNotFound
	}

	var record taskRecord
	result = t.db.Where("id = ? AND account_id = ?", input.ID, accountID).First(&record)
	if result.Error != nil {
		return taskstash.Task{}, result.Error
	}

	return record.task(), nil
}

func (t *taskRepository) Delete(accountID, taskID uint64) (bool, error) {
	result := t.db.
		Where("id = ? AND account_id = ?", taskID, accountID).
		Delete(&taskRecord{})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r taskRecord) task() taskstash.Task {
	return taskstash.Task{
		ID:          r.ID,
		AccountID:   r.AccountID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		Priority:    r.Priority,
		Tags:        splitTags(r.Tags),
		DueDate:     r.DueDate,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// Tags travel as a single comma-joined column. A tag containing a literal
// comma does not survive the round trip; known limitation of the encoding.
func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
