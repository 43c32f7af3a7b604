// Package validate checks request fields before they reach the services.
package validate

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/danielnoveno/hackathon-hooklabai/internal/model"
)

const (
	MaxTopicLen = 100
	MaxHookLen  = 320
	MaxLimit    = 100
)

// Wallet returns the normalized address.
func Wallet(v string) (string, error) {
	return model.ValidateWallet(v)
}

func NonEmpty(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return model.NewValidationError(field, "required")
	}
	return nil
}

// MaxLen counts characters, not bytes.
func MaxLen(field, v string, limit int) error {
	if utf8.RuneCountInString(v) > limit {
		return model.NewValidationError(field, fmt.Sprintf("exceeds %d characters", limit))
	}
	return nil
}

func Topic(v string) error {
	if err := NonEmpty("topic", v); err != nil {
		return err
	}
	return MaxLen("topic", v, MaxTopicLen)
}

func SelectedHook(v string) error {
	if err := NonEmpty("selectedHook", v); err != nil {
		return err
	}
	return MaxLen("selectedHook", v, MaxHookLen)
}

// Limit parses an optional page size; empty means def.
func Limit(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > MaxLimit {
		return 0, model.NewValidationError("limit", fmt.Sprintf("must be an integer between 1 and %d", MaxLimit))
	}
	return n, nil
}
