package gorm

import (
	"errors"
	"strings"
	"time"

	stdgorm "gorm.io/gorm"

	"github.com/taskstash/taskstash"
)

type accountRecord struct {
	ID           uint64 `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	Tasks        []taskRecord `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
	Notes        []noteRecord `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

func (accountRecord) TableName() string { return "account" }

type accountRepository struct {
	db *stdgorm.DB
}

func NewAccountRepository(db *stdgorm.DB) taskstash.AccountRepository {
	return &accountRepository{db}
}

func (a *accountRepository) Create(email, passwordHash string) (taskstash.Account, error) {
	record := accountRecord{Email: email, PasswordHash: passwordHash}

	result := a.db.Create(&record)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return taskstash.Account{}, taskstash.ErrEmailTaken
		}
		return taskstash.Account{}, result.Error
	}

	return record.account(), nil
}

func (a *accountRepository) FindByEmail(email string) (taskstash.Account, error) {
	var record accountRecord
	result := a.db.Where("email = ?", email).First(&record)

	if errors.Is(result.Error, stdgorm.ErrRecordNotFound) {
		return taskstash.Account{}, taskstash.ErrAccountNotFound
	}
	if result.Error != nil {
		return taskstash.Account{}, result.Error
	}

	return record.account(), nil
}

func (r accountRecord) account() taskstash.Account {
	return taskstash.Account{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

// isDuplicateKey matches the unique-violation messages of the sqlite and
// postgres drivers. Email carries the only unique index in the schema.
func isDuplicateKey(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// AutoMigrate creates or updates the account, task and note tables, including
// the cascading foreign keys back to account.
func AutoMigrate(db *stdgorm.DB) error {
	return db.AutoMigrate(&accountRecord{}, &taskRecord{}, &noteRecord{})
}
