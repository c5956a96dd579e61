package web

import (
	"context"
	"errors"
	"net"
	"net/url"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyUpstreamError(t *testing.T) {
	refused := &net.OpError{
		Op:  "dial",
		Err: os.NewSyscallError("connect", syscall.ECONNREFUSED),
	}

	cases := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", context.DeadlineExceeded, "Request timed out. Please try again."},
		{"refused", refused, "Connection refused. Service may be temporarily unavailable."},
		{"network", &url.Error{Op: "Get", URL: "http://up.example", Err: errors.New("connection reset")}, "Network error. Please check your connection."},
		{"unknown", errors.New("boom"), "Failed to fetch coins"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyUpstreamError(tc.err))
		})
	}
}
