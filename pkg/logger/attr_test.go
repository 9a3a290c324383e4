package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nutrisnap/nutrisnap/pkg/logger"
)

func TestError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Error(nil))

	err := errors.New("boom")
	attr := logger.Error(err)
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())
}

func TestErrors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Errors(nil, nil))

	attr := logger.Errors(errors.New("a"), nil, errors.New("b"))
	assert.Equal(t, "errors", attr.Key)
	assert.Len(t, attr.Value.Group(), 2)
}

func TestDomainAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(42), logger.UserID(42).Value.Int64())
	assert.Equal(t, "pro", logger.Tier("pro").Value.String())
	assert.Equal(t, "export", logger.Feature("export").Value.String())
	assert.Equal(t, slog.Attr{}, logger.PaymentID(""))
	assert.Equal(t, "ch_123", logger.PaymentID("ch_123").Value.String())
}
