package binding

import (
	"context"
	"net/http"
	"path"
	"reflect"
	"strings"

	"github.com/gorilla/mux"
)

type contextKey int

const (
	scopeContextKey contextKey = iota
	resourceContextKey
)

// WithResource attaches the resource a request resolved to, for handlers that dispatch on
// resources rather than on named routes.
func WithResource(ctx context.Context, resource interface{}) context.Context {
	return context.WithValue(ctx, resourceContextKey, resource)
}

// ResourceFromContext returns the resource attached with WithResource, or nil.
func ResourceFromContext(ctx context.Context) interface{} {
	return ctx.Value(resourceContextKey)
}

// ResolveRouteName returns the lower-cased name of the mux route that matched the request. If no
// named route matched, the name is synthesized from the type of the request's resource as
// <package>_<type>, lower-cased. It returns false if neither is available.
func ResolveRouteName(r *http.Request) (string, bool) {
	if route := mux.CurrentRoute(r); route != nil {
		if name := route.GetName(); name != "" {
			return strings.ToLower(name), true
		}
	}

	return resourceRouteName(ResourceFromContext(r.Context()))
}

// resourceRouteName synthesizes a route name from the resource's (dereferenced) named type.
func resourceRouteName(resource interface{}) (string, bool) {
	if resource == nil {
		return "", false
	}

	typ := reflect.TypeOf(resource)
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	if typ.Name() == "" {
		return "", false
	}

	pkg := "builtin"
	if typ.PkgPath() != "" {
		pkg = path.Base(typ.PkgPath())
	}

	return strings.ToLower(pkg + "_" + typ.Name()), true
}
