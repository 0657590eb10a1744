package config

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownKey   = errors.New("unknown key")
	ErrInvalidValue = errors.New("invalid value")
)

func errorf(typeMethod, format string, a ...interface{}) error {
	return fmt.Errorf("github.com/nicolagi/goldendiff/internal/config."+typeMethod+": "+format, a...)
}
