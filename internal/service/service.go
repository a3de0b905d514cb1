package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/study-analytics/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

const (
	maxTitleLen       = 200
	maxTagLen         = 20
	maxDescriptionLen = 1000
	maxCategoryLen    = 50
	searchLimit       = 50
)

// clock is shared by every service so tests can pin "now" and the calendar zone.
type clock struct {
	now func() time.Time
	loc *time.Location
}

func newClock(loc *time.Location) clock {
	if loc == nil {
		loc = time.Local
	}
	return clock{now: time.Now, loc: loc}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n == 0 {
		return validationError("title is required")
	}
	if n > maxTitleLen {
		return validationError("title must be at most %d characters", maxTitleLen)
	}
	return nil
}

func validateIDs(ids []int64) error {
	if len(ids) == 0 {
		return validationError("ids must not be empty")
	}
	return nil
}

// storeFailure logs err unless it is a plain miss and returns it unchanged.
func storeFailure(logger *zap.Logger, op string, owner int64, err error) error {
	if err != nil && !errors.Is(err, repo.ErrorNotFound) {
		logger.Error(op+" failed", zap.Int64("owner_id", owner), zap.Error(err))
	}
	return err
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func validateTags(tags []string) error {
	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > maxTagLen {
			return validationError("tag %q must be at most %d characters", tag, maxTagLen)
		}
	}
	return nil
}
