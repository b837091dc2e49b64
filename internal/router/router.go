package router

import (
	"os"
	"strings"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"github.com/valyala/fasthttp/pprofhandler"

	apiHandler "github.com/fastygo/worklog/api/handler"
)

type Handlers struct {
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

// Options control the non-API surface of the server.
type Options struct {
	UploadDir     string
	UploadPrefix  string
	StaticDir     string
	EnableMetrics bool
	EnablePprof   bool
}

func New(handlers Handlers, opts Options) *router.Router {
	r := router.New()
	r.SaveMatchedRoutePath = true
	r.RedirectTrailingSlash = false

	r.GET("/api/health", handlers.Health.Check)

	r.GET("/api/tasks", handlers.Task.ListTasks)
	r.POST("/api/tasks", handlers.Task.CreateTask)
	r.PUT("/api/tasks/{id}", handlers.Task.UpdateTask)
	r.DELETE("/api/tasks/{id}", handlers.Task.DeleteTask)
	r.DELETE("/api/tasks/{id}/image", handlers.Task.DeleteImage)

	if opts.UploadDir != "" {
		prefix := strings.TrimSuffix(opts.UploadPrefix, "/")
		if prefix == "" {
			prefix = "/uploads"
		}
		r.ServeFiles(prefix+"/{filepath:*}", opts.UploadDir)
	}

	if opts.EnableMetrics {
		r.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))
	}
	if opts.EnablePprof {
		r.GET("/debug/pprof/{profile:*}", pprofhandler.PprofHandler)
	}

	r.NotFound = notFound(opts.StaticDir)
	return r
}

// notFound serves the front-end bundle for anything outside /api, and a JSON 404 inside it.
func notFound(staticDir string) fasthttp.RequestHandler {
	var static fasthttp.RequestHandler
	if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
		fs := &fasthttp.FS{
			Root:               staticDir,
			IndexNames:         []string{"index.html"},
			AcceptByteRange:    true,
			PathNotFound:       jsonNotFound,
			GenerateIndexPages: false,
		}
		static = fs.NewRequestHandler()
	}

	return func(ctx *fasthttp.RequestCtx) {
		if static == nil || strings.HasPrefix(string(ctx.Path()), "/api/") || !(ctx.IsGet() || ctx.IsHead()) {
			jsonNotFound(ctx)
			return
		}
		static(ctx)
	}
}

func jsonNotFound(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.SetContentType("application/json; charset=utf-8")
	ctx.SetStatusCode(fasthttp.StatusNotFound)
	ctx.SetBodyString(`{"error":"Not found","code":"NOT_FOUND"}`)
}
