package nlsql

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Sanitizer rewrites symbolic placeholders into positional bind parameters.
// Values only ever travel as query arguments; they are never interpolated
// into the statement text, no matter what the generator produced.
type Sanitizer struct {
	logger *slog.Logger
}

func NewSanitizer(logger *slog.Logger) *Sanitizer {
	return &Sanitizer{logger: logger}
}

var (
	bracePlaceholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)
	// A single colon only: "::" type casts must survive.
	colonPlaceholderRe = regexp.MustCompile(`(^|[^:]):([a-zA-Z_][a-zA-Z0-9_]*)`)
	identityQuestionRe = regexp.MustCompile(`(?i)\b(ra|user_id|aluno_id)\s*=\s*\?`)
)

// identitySynonyms maps placeholder spellings of the caller identity onto the
// canonical RA context key.
var identitySynonyms = map[string]string{
	"user_id":  "RA",
	"aluno_id": "RA",
	"ra":       "RA",
}

// Sanitize rewrites every recognized placeholder in sql to $1..$n and
// collects the bound values in order. An unresolved placeholder fails the
// whole session: partially-bound SQL must never reach the Executor.
//
// The pass is idempotent: already-sanitized SQL contains no recognizable
// placeholders and is returned unchanged with no parameters.
func (s *Sanitizer) Sanitize(sql string, callerContext map[string]string) (string, []any, error) {
	var params []any

	bind := func(name string) (string, error) {
		value, ok := resolvePlaceholder(name, callerContext)
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnresolvedPlaceholder, name)
		}
		params = append(params, value)
		return fmt.Sprintf("$%d", len(params)), nil
	}

	var firstErr error
	out := bracePlaceholderRe.ReplaceAllStringFunc(sql, func(m string) string {
		name := bracePlaceholderRe.FindStringSubmatch(m)[1]
		ref, err := bind(name)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return m
		}
		return ref
	})
	if firstErr != nil {
		return "", nil, firstErr
	}

	out = colonPlaceholderRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := colonPlaceholderRe.FindStringSubmatch(m)
		prefix, name := sub[1], sub[2]
		ref, err := bind(name)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return m
		}
		return prefix + ref
	})
	if firstErr != nil {
		return "", nil, firstErr
	}

	// A bare "?" directly after an identity predicate stands for the caller.
	out = identityQuestionRe.ReplaceAllStringFunc(out, func(m string) string {
		ref, err := bind("RA")
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return m
		}
		return strings.Replace(m, "?", ref, 1)
	})
	if firstErr != nil {
		return "", nil, firstErr
	}

	if s.logger != nil && len(params) > 0 {
		s.logger.Info("Statement parameterized", "placeholders", len(params))
	}
	return out, params, nil
}

// resolvePlaceholder finds the value for a placeholder name: exact key, then
// case-insensitive key, then the identity synonym table.
func resolvePlaceholder(name string, callerContext map[string]string) (string, bool) {
	if v, ok := callerContext[name]; ok {
		return v, true
	}
	for k, v := range callerContext {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	if canonical, ok := identitySynonyms[strings.ToLower(name)]; ok {
		if v, ok := callerContext[canonical]; ok {
			return v, true
		}
		for k, v := range callerContext {
			if strings.EqualFold(k, canonical) {
				return v, true
			}
		}
	}
	return "", false
}
