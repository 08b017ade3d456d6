// Package router mounts the communication API and the operational endpoints.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouteRegistrar adds routes to the versioned API group
type RouteRegistrar interface {
	RegisterRoutes(api *gin.RouterGroup)
}

// Router mounts /api/<version> behind the API middleware chain, with /health
// and /metrics outside it.
type Router struct {
	engine        *gin.Engine
	apiVersion    string
	apiMiddleware []gin.HandlerFunc
	health        gin.HandlerFunc
	gatherer      prometheus.Gatherer
	registrars    []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion replaces the default "v1" path segment
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

// WithAPIMiddleware appends handlers run before every /api route
func WithAPIMiddleware(mw ...gin.HandlerFunc) RouterOption {
	return func(r *Router) { r.apiMiddleware = append(r.apiMiddleware, mw...) }
}

// WithHealth serves h at GET /health
func WithHealth(h gin.HandlerFunc) RouterOption {
	return func(r *Router) { r.health = h }
}

// WithMetrics serves g at GET /metrics
func WithMetrics(g prometheus.Gatherer) RouterOption {
	return func(r *Router) { r.gatherer = g }
}

// NewRouter creates a Router for engine
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues registrar for Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup mounts everything on the engine. Call it once.
func (r *Router) Setup() {
	if r.health != nil {
		r.engine.GET("/health", r.health)
	}
	if r.gatherer != nil {
		r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}
	api := r.engine.Group("/api/"+r.apiVersion, r.apiMiddleware...)
	for _, reg := range r.registrars {
		reg.RegisterRoutes(api)
	}
}

// Route is one endpoint and the single permission that guards it
type Route struct {
	Method     string
	Path       string // relative to the table prefix, "" for the prefix itself
	Permission string
	Handlers   []gin.HandlerFunc
}

// FullPath joins the route path onto prefix
func (rt Route) FullPath(prefix string) string {
	switch {
	case rt.Path == "" || rt.Path == "/":
		return prefix
	case prefix == "" || prefix == "/":
		return rt.Path
	default:
		return prefix + rt.Path
	}
}

// RouteTable is a prefix-mounted list of permission-guarded routes
type RouteTable struct {
	Prefix string
	Routes []Route
	// Guard turns a permission into middleware run before the route handlers
	Guard func(permission string) gin.HandlerFunc
}

// Add appends a route
func (t *RouteTable) Add(method, path, permission string, handlers ...gin.HandlerFunc) {
	t.Routes = append(t.Routes, Route{Method: method, Path: path, Permission: permission, Handlers: handlers})
}

// RegisterRoutes implements RouteRegistrar
func (t *RouteTable) RegisterRoutes(api *gin.RouterGroup) {
	group := api.Group(t.Prefix)
	for _, rt := range t.Routes {
		chain := make([]gin.HandlerFunc, 0, len(rt.Handlers)+1)
		if t.Guard != nil {
			chain = append(chain, t.Guard(rt.Permission))
		}
		chain = append(chain, rt.Handlers...)
		group.Handle(rt.Method, rt.Path, chain...)
	}
}

// Permissions maps "METHOD /full/path" to the permission the route requires
func (t *RouteTable) Permissions() map[string]string {
	out := make(map[string]string, len(t.Routes))
	for _, rt := range t.Routes {
		out[rt.Method+" "+rt.FullPath(t.Prefix)] = rt.Permission
	}
	return out
}

var _ RouteRegistrar = (*RouteTable)(nil)
