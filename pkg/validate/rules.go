package validate

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/goliatone/go-formguard/pkg/messages"
	"github.com/goliatone/go-formguard/pkg/numfmt"
)

// Rules are the generic constraints a field may declare next to its type.
// They run before the type validator, in declaration order below, and the
// first failure wins.
type Rules struct {
	Required  bool
	MinLength int
	MaxLength int
	Min       *float64
	Max       *float64
	// Pattern is matched anywhere in the value. A pattern that does not
	// compile is ignored.
	Pattern string
	// PatternMessage replaces the catalogue text when Pattern fails.
	PatternMessage string
}

// lengthNoise is ignored when counting towards MinLength so that mask
// characters do not satisfy the rule.
const lengthNoise = " \t\n-().,"

// Check applies the rules to value. An empty, non-required value passes.
func (r Rules) Check(value string) Outcome {
	if strings.TrimSpace(value) == "" {
		if r.Required {
			return Fail(messages.Required, nil)
		}
		return OK()
	}

	if r.MinLength > 0 {
		n := utf8.RuneCountInString(strings.Map(func(c rune) rune {
			if strings.ContainsRune(lengthNoise, c) {
				return -1
			}
			return c
		}, value))
		if n < r.MinLength {
			return Fail(messages.MinLength, messages.Params{"min": r.MinLength, "current": n})
		}
	}
	if r.MaxLength > 0 {
		if n := utf8.RuneCountInString(value); n > r.MaxLength {
			return Fail(messages.MaxLength, messages.Params{"max": r.MaxLength, "current": n})
		}
	}

	if r.Min != nil || r.Max != nil {
		v, err := numfmt.Parse(value)
		if err != nil {
			return Fail(messages.Number, nil)
		}
		if r.Min != nil && v < *r.Min {
			return Fail(messages.Min, messages.Params{"min": formatBound(*r.Min)})
		}
		if r.Max != nil && v > *r.Max {
			return Fail(messages.Max, messages.Params{"max": formatBound(*r.Max)})
		}
	}

	if r.Pattern != "" {
		if re := compilePattern(r.Pattern); re != nil && !re.MatchString(value) {
			out := Fail(messages.Pattern, nil)
			out.Message = r.PatternMessage
			return out
		}
	}
	return OK()
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var patternCache sync.Map

func compilePattern(pattern string) *regexp.Regexp {
	if cached, ok := patternCache.Load(pattern); ok {
		re, _ := cached.(*regexp.Regexp)
		return re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		re = nil
	}
	patternCache.Store(pattern, re)
	return re
}

// Match requires value to equal the current value of the target field. The
// error is reported on the confirming field.
func Match(value, target string) Outcome {
	if value == "" {
		return OK()
	}
	if value != target {
		return Fail(messages.Match, nil)
	}
	return OK()
}

// DateRange requires end to be on or after start. Both values are converted
// to zero-padded ISO dates first so the lexical comparison is calendar order.
// Missing or unparseable dates pass; the date validator reports those.
func DateRange(end, start string) Outcome {
	if end == "" || start == "" {
		return OK()
	}
	endISO, ok := ISODate(end)
	if !ok {
		return OK()
	}
	startISO, ok := ISODate(start)
	if !ok {
		return OK()
	}
	if endISO < startISO {
		return Fail(messages.DateRange, nil)
	}
	return OK()
}
