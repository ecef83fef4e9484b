package events

import (
	"errors"
	"net/http"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/disgoorg/disgo/rest"
	"github.com/stretchr/testify/assert"
)

func TestPermanentIfClientError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		permanent bool
	}{
		{name: "forbidden", err: &rest.Error{Response: &http.Response{StatusCode: http.StatusForbidden}}, permanent: true},
		{name: "rate limited", err: &rest.Error{Response: &http.Response{StatusCode: http.StatusTooManyRequests}}},
		{name: "server error", err: &rest.Error{Response: &http.Response{StatusCode: http.StatusBadGateway}}},
		{name: "transport error", err: assert.AnError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := permanentIfClientError(tt.err)

			var permanent *backoff.PermanentError
			assert.Equal(t, tt.permanent, errors.As(err, &permanent))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
