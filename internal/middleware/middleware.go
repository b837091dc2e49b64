package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/worklog/internal/metrics"
	"github.com/fastygo/worklog/pkg/httpcontext"
)

// Middleware wraps a request handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// Chain applies mws so that the first one runs outermost.
func Chain(h fasthttp.RequestHandler, mws ...Middleware) fasthttp.RequestHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RequestID makes sure every request carries an id, reusing X-Request-ID when the client sent one.
func RequestID() Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			httpcontext.RequestID(ctx)
			next(ctx)
		}
	}
}

// Recover turns a handler panic into a 500 instead of dropping the connection.
func Recover(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic",
						zap.String("request_id", httpcontext.RequestID(ctx)),
						zap.ByteString("path", ctx.Path()),
						zap.String("panic", fmt.Sprint(rec)),
						zap.Stack("stack"))
					ctx.ResetBody()
					ctx.Response.Header.SetContentType("application/json; charset=utf-8")
					ctx.SetStatusCode(fasthttp.StatusInternalServerError)
					ctx.SetBodyString(`{"error":"internal error","code":"INTERNAL"}`)
				}
			}()
			next(ctx)
		}
	}
}

// AccessLog writes one line per request.
func AccessLog(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			next(ctx)
			status := ctx.Response.StatusCode()
			fields := []zap.Field{
				zap.String("request_id", httpcontext.RequestID(ctx)),
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("path", ctx.Path()),
				zap.Int("status", status),
				zap.Duration("elapsed", time.Since(start)),
				zap.Int("bytes", len(ctx.Response.Body())),
			}
			if status >= fasthttp.StatusInternalServerError {
				logger.Warn("request", fields...)
				return
			}
			logger.Debug("request", fields...)
		}
	}
}

// Metrics records request counts and latency per matched route.
func Metrics() Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			next(ctx)
			metrics.ObserveRequest(string(ctx.Method()), routeLabel(ctx), ctx.Response.StatusCode(), time.Since(start))
		}
	}
}

// routeLabel keeps label cardinality bounded: unmatched paths collapse to "static".
func routeLabel(ctx *fasthttp.RequestCtx) string {
	if route, ok := ctx.UserValue(router.MatchedRoutePathParam).(string); ok && route != "" {
		return route
	}
	return "static"
}

// CORS answers preflight requests and tags responses for the allowed origins. "*" allows any origin.
func CORS(origins []string) Middleware {
	allowAll := false
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			origin := string(ctx.Request.Header.Peek("Origin"))
			if origin != "" {
				if _, ok := allowed[origin]; allowAll || ok {
					h := &ctx.Response.Header
					if allowAll {
						h.Set("Access-Control-Allow-Origin", "*")
					} else {
						h.Set("Access-Control-Allow-Origin", origin)
						h.Add("Vary", "Origin")
					}
					h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
					h.Set("Access-Control-Allow-Headers", "Content-Type, "+httpcontext.HeaderRequestID)
					h.Set("Access-Control-Expose-Headers", httpcontext.HeaderRequestID)
				}
			}
			if ctx.IsOptions() && len(ctx.Request.Header.Peek("Access-Control-Request-Method")) > 0 {
				ctx.SetStatusCode(fasthttp.StatusNoContent)
				return
			}
			next(ctx)
		}
	}
}

// SecureHeaders sets conservative browser headers on every response.
func SecureHeaders() Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			next(ctx)
			h := &ctx.Response.Header
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "same-origin")
			if strings.HasPrefix(string(ctx.Path()), "/api/") {
				h.Set("Cache-Control", "no-store")
			}
		}
	}
}
