package router

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/worklog/api/handler"
	"github.com/fastygo/worklog/internal/config"
	"github.com/fastygo/worklog/internal/images"
	"github.com/fastygo/worklog/internal/infrastructure/monitor"
	"github.com/fastygo/worklog/repository/memory"
	taskUC "github.com/fastygo/worklog/usecase/task"
)

func newTestRouter(t *testing.T, staticDir string) (fasthttp.RequestHandler, string) {
	t.Helper()
	uploadDir := t.TempDir()
	storage, err := images.NewStorage(config.UploadConfig{Dir: uploadDir, URLPrefix: "/uploads/", MaxFileBytes: 1 << 20}, nil)
	require.NoError(t, err)

	repo := memory.NewTaskRepo()
	mon := monitor.New(repo, nil, uploadDir, time.Hour, nil)
	mon.Refresh()

	r := New(Handlers{
		Task:   apiHandler.NewTaskHandler(taskUC.New(repo, storage, nil), nil, nil),
		Health: apiHandler.NewHealthHandler(mon, nil, nil),
	}, Options{
		UploadDir:     uploadDir,
		UploadPrefix:  "/uploads/",
		StaticDir:     staticDir,
		EnableMetrics: true,
	})
	return r.Handler, uploadDir
}

func serve(h fasthttp.RequestHandler, method, uri, contentType, body string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if contentType != "" {
		req.Header.SetContentType(contentType)
	}
	req.SetBodyString(body)
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	h(ctx)
	return ctx
}

func TestRoutesDispatch(t *testing.T) {
	h, _ := newTestRouter(t, "")

	created := serve(h, "POST", "/api/tasks", "application/json", `{"title":"a","task_date":"2024-06-15"}`)
	require.Equal(t, fasthttp.StatusCreated, created.Response.StatusCode(), string(created.Response.Body()))

	list := serve(h, "GET", "/api/tasks?start=2024-06-15&end=2024-06-15", "", "")
	assert.Equal(t, fasthttp.StatusOK, list.Response.StatusCode())
	assert.Contains(t, string(list.Response.Body()), `"title":"a"`)

	health := serve(h, "GET", "/api/health", "", "")
	assert.Equal(t, fasthttp.StatusOK, health.Response.StatusCode())

	missing := serve(h, "PUT", "/api/tasks/nope", "application/json", `{"title":"b"}`)
	assert.Equal(t, fasthttp.StatusNotFound, missing.Response.StatusCode())

	metrics := serve(h, "GET", "/metrics", "", "")
	assert.Equal(t, fasthttp.StatusOK, metrics.Response.StatusCode())
}

func TestUnknownAPIPathIsJSON404(t *testing.T) {
	h, _ := newTestRouter(t, t.TempDir())

	ctx := serve(h, "GET", "/api/unknown", "", "")

	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"error":"Not found","code":"NOT_FOUND"}`, string(ctx.Response.Body()))
}

func TestServesUploadsAndStatic(t *testing.T) {
	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<h1>log</h1>"), 0o644))
	h, uploadDir := newTestRouter(t, staticDir)
	require.NoError(t, os.WriteFile(filepath.Join(uploadDir, "1-2.png"), []byte("img"), 0o644))

	upload := serve(h, "GET", "/uploads/1-2.png", "", "")
	assert.Equal(t, fasthttp.StatusOK, upload.Response.StatusCode())
	assert.Equal(t, "img", string(upload.Response.Body()))

	index := serve(h, "GET", "/", "", "")
	assert.Equal(t, fasthttp.StatusOK, index.Response.StatusCode())
	assert.Contains(t, string(index.Response.Body()), "log")
}
