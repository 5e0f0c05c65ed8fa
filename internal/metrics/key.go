package metrics

import (
	"strconv"
	"strings"
)

// Key is a metric key, or part of one. The set of implementations is closed: a Key is either a
// scalar (Name, Int, Float) or an ordered sequence of keys (Segments).
type Key interface {
	compose() string
}

// Name is a scalar string key.
type Name string

// Int is a scalar integer key.
type Int int64

// Float is a scalar floating point key.
type Float float64

// Segments is an ordered sequence of keys, composed by joining each composed member with a dot.
type Segments []Key

func (n Name) compose() string { return string(n) }

func (i Int) compose() string { return strconv.FormatInt(int64(i), 10) }

func (f Float) compose() string { return strconv.FormatFloat(float64(f), 'f', -1, 64) }

func (s Segments) compose() string {
	parts := make([]string, len(s))
	for idx, member := range s {
		parts[idx] = Compose(member)
	}

	return strings.Join(parts, ".")
}

// Path builds Segments from plain string parts.
func Path(parts ...string) Segments {
	segments := make(Segments, len(parts))
	for idx, part := range parts {
		segments[idx] = Name(part)
	}

	return segments
}

// Compose canonicalizes a key into the dotted string sent to the metrics backend. A nil key
// composes to the empty string.
func Compose(key Key) string {
	if key == nil {
		return ""
	}

	return key.compose()
}

// RouteKey qualifies an already-composed key with a route name.
func RouteKey(routeName string, composedKey string) string {
	return "route." + routeName + "." + composedKey
}
