package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"

	internal_errors "github.com/itchan-dev/postmove/shared/errors"
)

type TopicTitleValidator struct {
	MinLength int
	MaxLength int
}

func (v *TopicTitleValidator) Title(title string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n < v.MinLength {
		return internal_errors.InvalidInput(fmt.Sprintf("Title is too short (minimum is %d characters)", v.MinLength))
	}
	if n > v.MaxLength {
		return internal_errors.InvalidInput(fmt.Sprintf("Title is too long (maximum is %d characters)", v.MaxLength))
	}
	return nil
}

type PostRawValidator struct {
	MaxLength int
}

func (v *PostRawValidator) Raw(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return internal_errors.InvalidInput("Text is too short")
	}
	if utf8.RuneCountInString(raw) > v.MaxLength {
		return internal_errors.InvalidInput("Text is too long")
	}
	return nil
}
