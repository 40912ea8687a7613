package authservice

import (
	"context"
	"regexp"

	"github.com/go-kit/kit/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskstash/taskstash"
)

type Service interface {
	Register(ctx context.Context, email, password string) (uint64, string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

func New(accounts taskstash.AccountRepository, t Tokenizer, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(accounts, t)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

type basicService struct {
	accounts  taskstash.AccountRepository
	tokenizer Tokenizer
}

func NewBasicService(accounts taskstash.AccountRepository, t Tokenizer) Service {
	return &basicService{accounts: accounts, tokenizer: t}
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Register creates an account and logs it in immediately, returning the new
// account ID alongside a fresh token.
func (s *basicService) Register(_ context.Context, email, password string) (uint64, string, error) {
	if !emailPattern.MatchString(email) {
		return 0, "", taskstash.ErrInvalidEmail
	}
	if len(password) < 8 {
		return 0, "", taskstash.ErrPasswordTooShort
	}

	if _, err := s.accounts.FindByEmail(email); err == nil {
		return 0, "", taskstash.ErrEmailTaken
	} else if err != taskstash.ErrAccountNotFound {
		return 0, "", err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return 0, "", err
	}

	acc, err := s.accounts.Create(email, hash)
	if err != nil {
		return 0, "", err
	}

	return acc.ID, s.tokenizer.Issue(acc.ID), nil
}

// Login yields a token for valid credentials. An unknown email and a wrong
// password produce the same error, so a caller cannot tell which emails
// are registered.
func (s *basicService) Login(_ context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", taskstash.ErrInvalidArgument
	}

	acc, err := s.accounts.FindByEmail(email)
	if err == taskstash.ErrAccountNotFound {
		return "", taskstash.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if !hashMatchesPassword(acc.PasswordHash, password) {
		return "", taskstash.ErrInvalidCredentials
	}

	return s.tokenizer.Issue(acc.ID), nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func hashMatchesPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
