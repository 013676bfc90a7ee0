package startup

import (
	"fmt"
	"strings"
	"time"

	"clipmerge/internal/logging"

	"github.com/gorilla/mux"
)

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		// Routes without a method matcher answer every method.
		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{Method: method, Path: path, Name: route.GetName()})
		}
		return nil
	})

	return routes, err
}

// routeGroups lists the service's route groups in the order they are logged.
// A path belongs to the first group with a matching prefix.
var routeGroups = []struct {
	name     string
	title    string
	prefixes []string
}{
	{"merge", "Video merging", []string{"/merge/"}},
	{"convert", "Conversions", []string{"/convert/"}},
	{"files", "Published files", []string{"/uploads/", "/merged/"}},
	{"ops", "Health and version", []string{"/health", "/livez", "/readyz", "/version"}},
}

// routeGroup returns the group name a path is logged under, or "other".
func routeGroup(path string) string {
	for _, g := range routeGroups {
		for _, prefix := range g.prefixes {
			if strings.HasPrefix(path, prefix) {
				return g.name
			}
		}
	}
	return "other"
}

// groupRoutes buckets routes by routeGroup, joining the methods of each path
// into one entry ("GET,HEAD /livez").
func groupRoutes(routes []RouteInfo) map[string][]string {
	methods := make(map[string][]string)
	var order []string
	for _, r := range routes {
		if _, seen := methods[r.Path]; !seen {
			order = append(order, r.Path)
		}
		methods[r.Path] = append(methods[r.Path], r.Method)
	}

	groups := make(map[string][]string)
	for _, path := range order {
		g := routeGroup(path)
		groups[g] = append(groups[g], fmt.Sprintf("%-9s %s", strings.Join(methods[path], ","), path))
	}
	return groups
}

// LogHTTPRoutes logs the registered routes grouped by what they serve,
// followed by the request logging switches.
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP ROUTES")
	logging.Info("------------------------------------------------------------")

	routes, err := GetRoutes(router)
	if err != nil {
		logging.Warn("error walking routes: %v", err)
	}
	groups := groupRoutes(routes)

	for _, g := range routeGroups {
		if len(groups[g.name]) == 0 {
			continue
		}
		logging.Info("  %s:", g.title)
		for _, line := range groups[g.name] {
			logging.Info("    %s", line)
		}
	}
	if other := groups["other"]; len(other) > 0 {
		logging.Debug("  Other:")
		for _, line := range other {
			logging.Debug("    %s", line)
		}
	}

	logging.Info("")
	logging.Info("  Request log: static files %s, health checks %s", onOff(logStaticFiles), onOff(logHealthChecks))
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

// ServerConfig holds what the ready banner reports.
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	PublishBackend  string
	PublicBaseURL   string
	StartupDuration time.Duration
}

// LogServerStarted logs the ready banner with the client-facing endpoints.
func LogServerStarted(config ServerConfig) {
	base := "http://localhost:" + config.Port

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("CLIPMERGE READY (started in %v)", config.StartupDuration.Round(time.Millisecond))
	logging.Info("------------------------------------------------------------")
	logging.Info("  Merge:       POST %s/merge/videos -> %s", base, config.PublishBackend)
	logging.Info("  Convert:     POST %s/convert/image", base)
	logging.Info("               POST %s/convert/audio", base)
	if config.PublishBackend == "local" && config.PublicBaseURL != "" {
		logging.Info("  Files:       %s/uploads/, merged links under %s/merged/", base, config.PublicBaseURL)
	} else {
		logging.Info("  Files:       %s/uploads/", base)
	}
	logging.Info("  Readiness:   %s/readyz", base)
	if config.MetricsEnabled {
		logging.Info("  Metrics:     http://localhost:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("  Metrics:     DISABLED")
	}
	logging.Info("------------------------------------------------------------")
}

// Shutdown logs an ordered sequence of teardown steps.
type Shutdown struct {
	start  time.Time
	failed int
}

// BeginShutdown logs the signal that triggered the shutdown.
func BeginShutdown(signal string) *Shutdown {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTTING DOWN (%s)", signal)
	logging.Info("------------------------------------------------------------")
	return &Shutdown{start: time.Now()}
}

// Step runs fn and logs its outcome. A failed step is logged and counted;
// later steps still run.
func (s *Shutdown) Step(name string, fn func() error) {
	logging.Debug("  %s...", name)
	start := time.Now()
	if err := fn(); err != nil {
		s.failed++
		logging.Warn("  [WARN] %s: %v", name, err)
		return
	}
	logging.Info("  [OK] %s (%v)", name, time.Since(start).Round(time.Millisecond))
}

// Failed reports how many steps returned an error.
func (s *Shutdown) Failed() int {
	return s.failed
}

// Done logs the total shutdown time.
func (s *Shutdown) Done() {
	if s.failed > 0 {
		logging.Warn("  Shutdown finished with %d failed step(s) in %v", s.failed, time.Since(s.start).Round(time.Millisecond))
		return
	}
	logging.Info("  [OK] Shutdown complete in %v", time.Since(s.start).Round(time.Millisecond))
}
