package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/worklog/pkg/logger"
)

func TestAttachReusesIncomingRequestID(t *testing.T) {
	var req fasthttp.Request
	req.Header.Set(HeaderRequestID, "abc")
	req.Header.SetUserAgent("test-agent")
	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)

	stdCtx, cancel := NewAdapter(time.Second).Attach(&ctx)
	defer cancel()

	assert.Equal(t, "abc", appLogger.RequestID(stdCtx))
	assert.Equal(t, "abc", string(ctx.Response.Header.Peek(HeaderRequestID)))
	assert.Equal(t, "test-agent", stdCtx.Value(KeyUserAgent))

	deadline, ok := stdCtx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
}

func TestRequestIDIsGeneratedOnce(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Init(&fasthttp.Request{}, nil, nil)

	first := RequestID(&ctx)
	assert.NotEmpty(t, first)
	assert.Equal(t, first, RequestID(&ctx))
	assert.Equal(t, first, string(ctx.Response.Header.Peek(HeaderRequestID)))
}
