package services

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownModule   = errors.New("module does not belong to course")
	ErrAlreadyApproved = errors.New("submission already approved")
	ErrUploadRejected  = errors.New("upload rejected")
)

// notFound maps gorm's sentinel onto ErrNotFound and leaves other errors alone.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
