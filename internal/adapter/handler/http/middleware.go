package http

import (
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Middleware wraps a request handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// Chain applies middlewares so that the first one is the outermost.
func Chain(h fasthttp.RequestHandler, middlewares ...Middleware) fasthttp.RequestHandler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Logging logs every request with its status and duration.
func Logging(logger *zap.Logger) Middleware {
	log := logger.Named("HTTP")
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			next(ctx)
			log.Info("Request handled",
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("uri", ctx.RequestURI()),
				zap.Int("status", ctx.Response.StatusCode()),
				zap.Duration("duration", time.Since(start)),
			)
		}
	}
}

// CORS allows the listed origins, or any origin when the list contains "*".
// Preflight requests are answered directly.
func CORS(allowedOrigins []string) Middleware {
	allowAny := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAny = true
		}
		allowed[strings.TrimRight(origin, "/")] = struct{}{}
	}

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			origin := string(ctx.Request.Header.Peek(fasthttp.HeaderOrigin))
			switch {
			case allowAny:
				ctx.Response.Header.Set(fasthttp.HeaderAccessControlAllowOrigin, "*")
			case origin != "":
				if _, ok := allowed[origin]; ok {
					ctx.Response.Header.Set(fasthttp.HeaderAccessControlAllowOrigin, origin)
					ctx.Response.Header.Add(fasthttp.HeaderVary, fasthttp.HeaderOrigin)
				}
			}
			ctx.Response.Header.Set(fasthttp.HeaderAccessControlAllowMethods, "GET, OPTIONS")
			ctx.Response.Header.Set(fasthttp.HeaderAccessControlAllowHeaders, "Content-Type, Authorization")

			if ctx.IsOptions() {
				ctx.SetStatusCode(fasthttp.StatusNoContent)
				return
			}
			next(ctx)
		}
	}
}
