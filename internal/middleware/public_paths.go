package middleware

import (
	"fmt"
	"strings"
)

// PublicPaths is the ordered set of path prefixes that bypass
// authentication. A path is public iff it starts with one of the prefixes.
type PublicPaths struct {
	prefixes []string
}

func NewPublicPaths(prefixes []string) (*PublicPaths, error) {
	out := make([]string, 0, len(prefixes))
	for _, prefix := range prefixes {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" || prefix == "/" {
			return nil, fmt.Errorf("public path prefix %q would match every request", prefix)
		}
		if !strings.HasPrefix(prefix, "/") {
			return nil, fmt.Errorf("public path prefix %q must start with '/'", prefix)
		}
		out = append(out, prefix)
	}
	return &PublicPaths{prefixes: out}, nil
}

func (p *PublicPaths) Matches(path string) (string, bool) {
	if p == nil {
		return "", false
	}
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(path, prefix) {
			return prefix, true
		}
	}
	return "", false
}

func (p *PublicPaths) Prefixes() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.prefixes...)
}
