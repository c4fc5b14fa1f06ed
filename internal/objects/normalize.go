package objects

import (
	"net/url"
	"sort"
	"strings"
)

// Normalizer rewrites foreign object references into canonical /objects/ paths.
type Normalizer struct {
	// prefixes are the known directory prefixes without their bucket, as
	// segment lists sorted longest first.
	prefixes [][]string
}

// NewNormalizer builds a normalizer that knows the given directories.
func NewNormalizer(dirs []Dir) *Normalizer {
	n := &Normalizer{}
	seen := make(map[string]struct{})
	for _, d := range dirs {
		if _, ok := seen[d.Prefix]; ok {
			continue
		}
		seen[d.Prefix] = struct{}{}
		n.prefixes = append(n.prefixes, splitSegments(d.Prefix))
	}
	sort.SliceStable(n.prefixes, func(i, j int) bool {
		return len(n.prefixes[i]) > len(n.prefixes[j])
	})
	return n
}

// Normalize returns the canonical form of raw when it can be derived and raw
// itself otherwise. It is idempotent.
func (n *Normalizer) Normalize(raw string) string {
	if strings.HasPrefix(raw, canonicalPrefix) {
		return raw
	}

	if strings.HasPrefix(raw, "https://") || strings.HasPrefix(raw, "http://") {
		if canonical, ok := n.fromURL(raw); ok {
			return canonical
		}
		return raw
	}

	seg := strings.TrimPrefix(raw, "/")
	if seg != "" && seg != "." && seg != ".." && !strings.ContainsAny(seg, "/?#") {
		return canonicalPrefix + seg
	}
	return raw
}

func (n *Normalizer) fromURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	segs := splitSegments(u.Path)

	// Firebase download URLs: /v0/b/<bucket>/o/<escaped key>
	if len(segs) >= 5 && segs[0] == "v0" && segs[1] == "b" && segs[3] == "o" {
		segs = append([]string{segs[2]}, segs[4:]...)
	}
	if len(segs) < 2 {
		return "", false
	}

	key := segs[1:]
	for _, prefix := range n.prefixes {
		if len(key) <= len(prefix) || !hasSegmentPrefix(key, prefix) {
			continue
		}
		remainder := strings.Join(key[len(prefix):], "/")
		if hasTraversal(remainder) {
			return "", false
		}
		return canonicalPrefix + remainder, true
	}
	return "", false
}

func hasSegmentPrefix(key, prefix []string) bool {
	for i := range prefix {
		if key[i] != prefix[i] {
			return false
		}
	}
	return true
}
