package handlers

import (
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fundlane/fundlane/pkg"
)

// MethodNotAllowed returns the engine's NoMethod handler. It walks the
// registered route table to build an accurate Allow header for the requested
// path. Mount with engine.HandleMethodNotAllowed = true.
func MethodNotAllowed(engine *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed := allowedMethods(engine.Routes(), c.Request.URL.Path)
		if len(allowed) > 0 {
			c.Header("Allow", strings.Join(allowed, ", "))
		}
		c.JSON(pkg.ErrMethodNotAllowedCode.Status, pkg.ErrorResponse{
			Status:  pkg.ErrMethodNotAllowedCode.Status,
			Code:    pkg.ErrMethodNotAllowedCode.Code,
			Message: pkg.ErrMethodNotAllowedCode.Message,
		})
	}
}

func allowedMethods(routes gin.RoutesInfo, path string) []string {
	seen := map[string]bool{}
	for _, route := range routes {
		if pathMatches(route.Path, path) && !seen[route.Method] {
			seen[route.Method] = true
		}
	}
	methods := make([]string, 0, len(seen))
	for m := range seen {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// pathMatches compares a request path against a route pattern segment by
// segment, treating ":param" as a single-segment wildcard and "*param" as a
// catch-all.
func pathMatches(pattern, path string) bool {
	patternSegs := strings.Split(strings.Trim(pattern, "/"), "/")
	pathSegs := strings.Split(strings.Trim(path, "/"), "/")

	for i, seg := range patternSegs {
		if strings.HasPrefix(seg, "*") {
			return true
		}
		if i >= len(pathSegs) {
			return false
		}
		if strings.HasPrefix(seg, ":") {
			continue
		}
		if seg != pathSegs[i] {
			return false
		}
	}
	return len(patternSegs) == len(pathSegs)
}
