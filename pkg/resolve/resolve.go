// Package resolve expands "${VAR}", "${VAR:-default}" and bare "$VAR"
// references in config strings against an explicit variable map, falling
// back to the process environment.
package resolve

import (
	"os"
	"regexp"
	"strings"

	"github.com/bascanada/buildlog/pkg/applog"
)

var varRe = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)(:-(.*?))?\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// Resolve replaces every "${VAR}", "${VAR:-default}" or "$VAR" occurrence in
// input: vars is checked first, then the process environment, then the
// inline default (if any); a reference that resolves to nothing and has no
// default is left in place unchanged.
func Resolve(input string, vars map[string]string) string {
	return varRe.ReplaceAllStringFunc(input, func(match string) string {
		applog.Debug("resolve: matched %q", match)
		name, hasDefault, def := parseMatch(match)

		if val, ok := vars[name]; ok {
			return val
		}
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		if hasDefault {
			return def
		}
		return match
	})
}

// parseMatch pulls the variable name and optional default out of a single
// regex match, covering both the "${NAME[:-default]}" and bare "$NAME" forms.
func parseMatch(match string) (name string, hasDefault bool, def string) {
	if !strings.HasPrefix(match, "${") {
		return match[1:], false, ""
	}
	body := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
	if idx := strings.Index(body, ":-"); idx >= 0 {
		return body[:idx], true, body[idx+2:]
	}
	return body, false, ""
}
