package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/hsclassify/internal/logging"
	"github.com/JonMunkholm/hsclassify/internal/oracle"
)

// Ask answers a free-form question using rows as the only context.
func (s *Service) Ask(ctx context.Context, question string, rows []oracle.Row) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	answer, err := s.oracle.Answer(ctx, question, rows)
	if err != nil {
		logging.FromContext(ctx).Warn("oracle answer failed", "rows", len(rows), "error", err)
		return "", fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
	}
	return strings.TrimSpace(answer), nil
}
