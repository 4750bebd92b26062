package minio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"github.com/koustreak/dbscribe/internal/errs"
	"github.com/koustreak/dbscribe/internal/filestore"
)

var _ filestore.Store = (*Driver)(nil)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: errs.ErrKindTimeout},
		{name: "no such key", err: miniogo.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}, want: errs.ErrKindNotFound},
		{name: "code wins over status", err: miniogo.ErrorResponse{Code: "SlowDown", StatusCode: http.StatusServiceUnavailable}, want: errs.ErrKindTimeout},
		{name: "forbidden status", err: miniogo.ErrorResponse{StatusCode: http.StatusForbidden}, want: errs.ErrKindPermissionDenied},
		{name: "bad bucket name", err: miniogo.ErrorResponse{Code: "InvalidBucketName"}, want: errs.ErrKindInvalidInput},
		{name: "wrapped response", err: fmt.Errorf("put: %w", miniogo.ErrorResponse{Code: "AccessDenied"}), want: errs.ErrKindPermissionDenied},
		{name: "network", err: errors.New("dial tcp: connection refused"), want: errs.ErrKindConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "op")
			assert.Equal(t, tt.want, got.Kind)
			assert.Equal(t, tt.err, got.Cause)
		})
	}

	assert.Nil(t, mapError(nil, "op"))
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New(context.Background(), &filestore.Config{})
	assert.True(t, errs.IsInvalidInput(err))
}
