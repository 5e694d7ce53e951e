package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoResultsDescription(t *testing.T) {
	err := NoResults("Acme")

	assert.Equal(t, "no results", err.Error())
	assert.True(t, IsNoResults(err))
	assert.False(t, IsTimeout(err))
	assert.Equal(t, StageSearch, err.Stage)
}

func TestTimeoutMessage(t *testing.T) {
	err := Timeout(StageDetail, "Acme", "h2.stats_ttl", context.DeadlineExceeded)

	assert.Contains(t, err.Error(), "detail timeout")
	assert.Contains(t, err.Error(), "h2.stats_ttl")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"deadline", fmt.Errorf("wait: %w", context.DeadlineExceeded), ErrorTypeTimeout},
		{"plain", errors.New("connection reset"), ErrorTypeTransport},
		{"already typed", Parse(StageSearch, "Acme", errors.New("bad html")), ErrorTypeParsing},
		{"wrapped no results", fmt.Errorf("fetch: %w", NoResults("Acme")), ErrorTypeNoResults},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(StageSearch, "Acme", tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Type)
		})
	}

	assert.Nil(t, Classify(StageSearch, "Acme", nil))
}

func TestTransportKeepsCause(t *testing.T) {
	cause := errors.New("net::ERR_NAME_NOT_RESOLVED")
	err := Transport(StageSearch, "Acme", cause)

	assert.Equal(t, "search transport: net::ERR_NAME_NOT_RESOLVED", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrorType(""), TypeOf(cause))
}
