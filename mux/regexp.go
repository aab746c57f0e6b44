package mux

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

const defaultPattern = "[^/]+"

// regexpCache holds compiled patterns. It is bounded by the number of
// registered routes.
var regexpCache sync.Map

func compileRegexp(pattern string) (*regexp.Regexp, error) {
	if v, ok := regexpCache.Load(pattern); ok {
		return v.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	actual, _ := regexpCache.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}

// routeRegexp is a compiled path template.
type routeRegexp struct {
	// template is the original template string.
	template string
	regexp   *regexp.Regexp
	// varsN are the variable names in order.
	varsN []string
	// varsI are the submatch indices of the variables.
	varsI []int
	// prefix matches the template as a path prefix.
	prefix bool
}

// newRouteRegexp parses a path template. Each variable becomes a named
// group, so capturing groups inside user patterns do not shift the values.
func newRouteRegexp(tpl string, prefix bool) (*routeRegexp, error) {
	idxs, err := braceIndices(tpl)
	if err != nil {
		return nil, err
	}

	var (
		pattern strings.Builder
		varsN   []string
		end     int
	)
	pattern.WriteByte('^')

	for i := 0; i < len(idxs); i += 2 {
		raw := tpl[end:idxs[i]]
		end = idxs[i+1]

		name, patt, constrained := strings.Cut(tpl[idxs[i]+1:end-1], ":")
		if name == "" {
			return nil, fmt.Errorf("mux: missing name in %q from %q", tpl[idxs[i]:end], tpl)
		}
		if !constrained {
			patt = defaultPattern
		}
		patt = expandMacro(patt)
		if _, err := compileRegexp(patt); err != nil {
			return nil, fmt.Errorf("mux: invalid pattern %q in variable %q: %w", patt, name, err)
		}

		fmt.Fprintf(&pattern, "%s(?P<v%d>%s)", regexp.QuoteMeta(raw), len(varsN), patt)
		varsN = append(varsN, name)
	}

	pattern.WriteString(regexp.QuoteMeta(tpl[end:]))
	if !prefix {
		pattern.WriteByte('$')
	}

	if err := checkDuplicateVars(varsN); err != nil {
		return nil, err
	}

	reg, err := compileRegexp(pattern.String())
	if err != nil {
		return nil, err
	}

	varsI := make([]int, len(varsN))
	for i := range varsN {
		varsI[i] = reg.SubexpIndex(fmt.Sprintf("v%d", i))
	}

	return &routeRegexp{
		template: tpl,
		regexp:   reg,
		varsN:    varsN,
		varsI:    varsI,
		prefix:   prefix,
	}, nil
}

// Match reports whether path matches the template.
func (r *routeRegexp) Match(path string) bool {
	return r.regexp.MatchString(path)
}

// vars extracts the variables of a matching path.
func (r *routeRegexp) vars(path string) map[string]string {
	if len(r.varsN) == 0 {
		return nil
	}
	matches := r.regexp.FindStringSubmatch(path)
	if matches == nil {
		return nil
	}
	vars := make(map[string]string, len(r.varsN))
	for i, name := range r.varsN {
		vars[name] = matches[r.varsI[i]]
	}
	return vars
}

// braceIndices returns the start and end+1 indices of each top-level
// {...} pair in s.
func braceIndices(s string) ([]int, error) {
	var (
		idxs  []int
		level int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if level++; level == 1 {
				idxs = append(idxs, i)
			}
		case '}':
			if level--; level == 0 {
				idxs = append(idxs, i+1)
			} else if level < 0 {
				return nil, fmt.Errorf("mux: unbalanced braces in %q", s)
			}
		}
	}
	if level != 0 {
		return nil, fmt.Errorf("mux: unbalanced braces in %q", s)
	}
	return idxs, nil
}

func checkDuplicateVars(vars []string) error {
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		if seen[v] {
			return fmt.Errorf("mux: duplicated route variable %q", v)
		}
		seen[v] = true
	}
	return nil
}
