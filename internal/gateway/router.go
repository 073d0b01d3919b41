package gateway

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kiosk404/hivegate/internal/gateway/dispatch"
	"github.com/kiosk404/hivegate/internal/gateway/handler/middleware"
	v1 "github.com/kiosk404/hivegate/internal/gateway/handler/v1"
	"github.com/kiosk404/hivegate/internal/gateway/options"
	"github.com/kiosk404/hivegate/internal/gateway/tenant"
)

// routerDeps holds the dependencies route registration wires together.
type routerDeps struct {
	registry         *tenant.Registry
	dispatcher       *dispatch.Dispatcher
	adminAuth        *middleware.AuthConfig
	tenantConfigFile string
	version          string
	metricsRegistry  *prometheus.Registry
}

func initRouter(g *gin.Engine, deps *routerDeps) {
	installMiddleware(g, deps)
	installController(g, deps)
}

func installMiddleware(g *gin.Engine, deps *routerDeps) {
	g.Use(gin.Recovery())
	g.Use(middleware.CORS())

	headerName := deps.registry.Policy().Security.TenantHeaderName
	if headerName == "" {
		headerName = "X-Tenant-ID"
	}
	g.Use(middleware.ExtractTenantHint(headerName))
}

func installController(g *gin.Engine, deps *routerDeps) {
	chatHandler := v1.NewChatCompletionsHandler(deps.registry, deps.dispatcher)
	modelHandler := v1.NewModelHandler()
	healthHandler := v1.NewHealthHandler(deps.version)
	tenantAdminHandler := v1.NewTenantAdminHandler(deps.registry)
	reloadHandler := v1.NewReloadHandler(deps.registry, deps.tenantConfigFile)

	g.GET("/health", healthHandler.Get)

	apiV1 := g.Group("/v1")
	{
		apiV1.POST("/chat/completions", chatHandler.Handle)
		apiV1.GET("/models", modelHandler.List)
	}

	admin := g.Group("/admin")
	admin.Use(middleware.AdminAuth(deps.adminAuth))
	{
		admin.GET("/tenants", tenantAdminHandler.List)
		admin.POST("/reload", reloadHandler.Reload)
	}

	if deps.metricsRegistry != nil {
		admin.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.metricsRegistry, promhttp.HandlerOpts{})))
	}
}

// newRouterDeps is kept free of the options package's validation concerns;
// callers pass already-completed configuration straight through.
func newRouterDeps(registry *tenant.Registry, dispatcher *dispatch.Dispatcher, opts *options.Options, version string, metricsRegistry *prometheus.Registry) *routerDeps {
	return &routerDeps{
		registry:         registry,
		dispatcher:       dispatcher,
		adminAuth:        opts.AdminOptions,
		tenantConfigFile: opts.TenantOptions.ConfigFile,
		version:          version,
		metricsRegistry:  metricsRegistry,
	}
}
