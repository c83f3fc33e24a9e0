// Package router dispatches requests by (method, path) and carries the
// normalized per-request context between the HTTP layer and handlers.
//
// Paths register either as exact strings or as templates with {name}
// segments. Matching is case-sensitive, anchored to the whole path, and never
// normalizes trailing slashes: /api/artists and /api/artists/ are distinct.
package router

import (
	"regexp"
	"strings"
)

// Handler consumes a request context and produces a complete result. Plain
// and role-gated handlers share this type; gating wraps one Handler in
// another.
type Handler func(*Context) Result

type routeKey struct {
	method string
	path   string
}

type templateRoute struct {
	method  string
	pattern *regexp.Regexp
	handler Handler
}

type Router struct {
	exact     map[routeKey]Handler
	templates []templateRoute
}

func New() *Router {
	return &Router{exact: make(map[routeKey]Handler)}
}

// Register adds a route. Registering the same exact method+path twice keeps
// the last handler; duplicate templates all stay registered and the first
// one registered wins at match time.
func (r *Router) Register(method, spec string, h Handler) {
	method = strings.ToUpper(method)
	if strings.Contains(spec, "{") {
		r.templates = append(r.templates, templateRoute{
			method:  method,
			pattern: compileTemplate(spec),
			handler: h,
		})
		return
	}
	r.exact[routeKey{method, spec}] = h
}

// Match resolves a concrete path. Exact entries take precedence over
// templates; templates are scanned in registration order. A template match
// must consume the entire path.
func (r *Router) Match(method, path string) (Handler, map[string]string, bool) {
	if h, ok := r.exact[routeKey{method, path}]; ok {
		return h, nil, true
	}

	for _, t := range r.templates {
		if t.method != method {
			continue
		}
		m := t.pattern.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		params := make(map[string]string)
		for i, name := range t.pattern.SubexpNames() {
			if i > 0 && name != "" {
				params[name] = m[i]
			}
		}
		return t.handler, params, true
	}

	return nil, nil, false
}

// compileTemplate turns /api/artists/{id} into ^/api/artists/(?P<id>[^/]+)$.
// A placeholder matches any non-empty run of characters without a slash.
func compileTemplate(spec string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	rest := spec
	for {
		open := strings.Index(rest, "{")
		if open < 0 {
			b.WriteString(regexp.QuoteMeta(rest))
			break
		}
		close := strings.Index(rest[open:], "}")
		if close < 0 {
			b.WriteString(regexp.QuoteMeta(rest))
			break
		}
		b.WriteString(regexp.QuoteMeta(rest[:open]))
		name := rest[open+1 : open+close]
		b.WriteString("(?P<" + name + ">[^/]+)")
		rest = rest[open+close+1:]
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}
