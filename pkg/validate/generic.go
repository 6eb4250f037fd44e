package validate

import (
	"net/netip"
	neturl "net/url"
	"regexp"
	"strings"

	"github.com/goliatone/go-formguard/pkg/messages"
	"github.com/goliatone/go-formguard/pkg/numfmt"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func email(value string) Outcome {
	if value == "" {
		return OK()
	}
	if !emailPattern.MatchString(strings.ToLower(value)) {
		return Fail(messages.Email, nil)
	}
	return OK()
}

// url accepts bare hosts ("example.com") as well as absolute URLs.
func url(value string) Outcome {
	if value == "" {
		return OK()
	}
	candidate := value
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	u, err := neturl.Parse(candidate)
	if err != nil || u.Host == "" || strings.ContainsAny(u.Host, " \t") {
		return Fail(messages.URL, nil)
	}
	return OK()
}

func ip(value string) Outcome {
	if value == "" {
		return OK()
	}
	addr, err := netip.ParseAddr(value)
	if err != nil || !addr.Is4() {
		return Fail(messages.IP, nil)
	}
	return OK()
}

func number(value string) Outcome {
	if value == "" {
		return OK()
	}
	trimmed := strings.TrimSpace(value)
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		if (c >= '0' && c <= '9') || c == '.' || c == ',' || (c == '-' && i == 0) {
			continue
		}
		return Fail(messages.Number, nil)
	}
	if _, err := numfmt.Parse(trimmed); err != nil {
		return Fail(messages.Number, nil)
	}
	return OK()
}
