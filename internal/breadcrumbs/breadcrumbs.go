// Package breadcrumbs maps route path segments to the human-readable
// labels the breadcrumb bar renders. Labels come from a static lookup
// table; unknown segments fall back to a kebab-case-to-title transform.
package breadcrumbs

import (
	"strings"

	funk "github.com/thoas/go-funk"
)

var routeLabels = map[string]string{
	"auth":     "Authentication",
	"login":    "Login",
	"register": "Register",
	"verify":   "Verify Account",
	"links":    "Links",
	"create":   "Create Link",
	"update":   "Update Link",
	"settings": "Settings",
	"tools":    "Developer Tools",
}

var dynamicRouteLabels = map[string]string{
	"{token}": "Token Verification",
	"{id}":    "Details",
	"{slug}":  "Item",
}

// Crumb is one rendered breadcrumb entry.
type Crumb struct {
	Label string
	Href  string
}

// SegmentToLabel resolves one path segment to its display label.
func SegmentToLabel(segment string) string {
	if label, ok := routeLabels[segment]; ok {
		return label
	}

	if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
		if label, ok := dynamicRouteLabels[segment]; ok {
			return label
		}
		return "Details"
	}

	words := funk.Map(strings.Split(segment, "-"), titleWord).([]string)
	return strings.Join(words, " ")
}

// Trail builds the breadcrumb entries for a request path, one crumb per
// non-empty segment, each linking to its cumulative prefix. Segments
// holding concrete route values (a link id, a verification token) get
// the label of the pattern they fill.
func Trail(path string) []Crumb {
	segments := funk.FilterString(strings.Split(path, "/"), func(s string) bool {
		return s != ""
	})

	crumbs := make([]Crumb, 0, len(segments))
	href := ""
	for i, segment := range segments {
		href += "/" + segment
		crumbs = append(crumbs, Crumb{
			Label: trailLabel(segments, i),
			Href:  href,
		})
	}

	return crumbs
}

// trailLabel resolves one trail segment, mapping concrete values back to
// their route pattern before the plain segment lookup.
func trailLabel(segments []string, i int) string {
	segment := segments[i]
	if _, configured := routeLabels[segment]; !configured {
		if i > 0 && segments[i-1] == "verify" {
			return dynamicRouteLabels["{token}"]
		}
		if isNumeric(segment) {
			return dynamicRouteLabels["{id}"]
		}
	}

	return SegmentToLabel(segment)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func titleWord(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
