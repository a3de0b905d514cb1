package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/study-analytics/internal/filter"
	"github.com/BuzzLyutic/study-analytics/internal/model"
	"github.com/BuzzLyutic/study-analytics/internal/notify"
	"github.com/BuzzLyutic/study-analytics/internal/repo"
	"github.com/BuzzLyutic/study-analytics/internal/service"
	"github.com/BuzzLyutic/study-analytics/pkg/respond"
)

var errUsage = errors.New("usage")

const (
	kindInvalidInput     = "invalid_input"
	kindNotFound         = "not_found"
	kindStoreUnavailable = "store_unavailable"
	kindInternal         = "internal"

	exitInternal = 1
	exitInvalid  = 2
	exitNotFound = 3
)

func usageError(msg string) error {
	return fmt.Errorf("%w: %s", errUsage, msg)
}

// classify maps an error to its reported kind and exit code.
func classify(err error) (string, int) {
	switch {
	case errors.Is(err, errUsage),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, filter.ErrInvalidFilter),
		errors.Is(err, filter.ErrInvalidQuery):
		return kindInvalidInput, exitInvalid
	case errors.Is(err, repo.ErrorNotFound), errors.Is(err, notify.ErrNotFound):
		return kindNotFound, exitNotFound
	case errors.Is(err, repo.ErrStoreUnavailable):
		return kindStoreUnavailable, exitInternal
	}
	return kindInternal, exitInternal
}

func writeError(w io.Writer, kind string, err error) error {
	return respond.Error(w, kind, err.Error())
}

func noArgs(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError(fmt.Sprintf("unexpected arguments %q", args))
	}
	return nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError(fmt.Sprintf("expected %d argument(s), got %d", n, len(args)))
		}
		return nil
	}
}

func minArgs(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < n {
			return usageError(fmt.Sprintf("expected at least %d argument(s), got %d", n, len(args)))
		}
		return nil
	}
}

// splitList decodes a comma-separated query value; blanks are dropped.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, usageError(fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}

// parseIDs accepts ids as separate arguments or comma-separated lists.
func parseIDs(args []string) ([]int64, error) {
	var ids []int64
	for _, arg := range args {
		for _, part := range splitList(arg) {
			id, err := parseID(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// parseOrders decodes ID=ORDER pairs.
func parseOrders(args []string) ([]model.TaskOrder, error) {
	orders := make([]model.TaskOrder, 0, len(args))
	for _, arg := range args {
		rawID, rawOrder, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, usageError(fmt.Sprintf("expected ID=ORDER, got %q", arg))
		}
		id, err := parseID(rawID)
		if err != nil {
			return nil, err
		}
		order, err := strconv.Atoi(strings.TrimSpace(rawOrder))
		if err != nil {
			return nil, usageError(fmt.Sprintf("invalid order %q", rawOrder))
		}
		orders = append(orders, model.TaskOrder{ID: id, Order: order})
	}
	return orders, nil
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
