package objects

import (
	"fmt"
	"strings"
)

const canonicalPrefix = "/objects/"

// ParsePath splits a storage path of the form /bucket/key... into its bucket
// and object key. The leading slash is optional.
func ParsePath(p string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(p), "/")
	bucket, key, ok := strings.Cut(trimmed, "/")
	if !ok || bucket == "" || strings.Trim(key, "/") == "" {
		return "", "", fmt.Errorf("%w: %q is not /bucket/key", ErrInvalidPath, p)
	}
	return bucket, key, nil
}

// JoinPath builds a storage path from a bucket and key.
func JoinPath(bucket, key string) string {
	return "/" + bucket + "/" + strings.TrimLeft(key, "/")
}

// Dir is a configured directory. Bucket is empty for a bare entry until it is
// qualified with the resolved bucket.
type Dir struct {
	Bucket string
	Prefix string
}

// parseDir accepts "/bucket/dir..." or a bare "dir...". A leading slash with at
// least two segments is the full form; anything else is bare.
func parseDir(raw string) (Dir, bool) {
	raw = strings.TrimSpace(raw)
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return Dir{}, false
	}
	if strings.HasPrefix(raw, "/") {
		if bucket, prefix, ok := strings.Cut(trimmed, "/"); ok && prefix != "" {
			return Dir{Bucket: bucket, Prefix: strings.Trim(prefix, "/")}, true
		}
	}
	return Dir{Prefix: trimmed}, true
}

func parseDirs(raws []string) []Dir {
	out := make([]Dir, 0, len(raws))
	for _, raw := range raws {
		if d, ok := parseDir(raw); ok {
			out = append(out, d)
		}
	}
	return out
}

// Path renders the directory as /bucket/prefix.
func (d Dir) Path() string {
	return JoinPath(d.Bucket, d.Prefix)
}

// Key joins a name under the directory prefix.
func (d Dir) Key(name string) string {
	return d.Prefix + "/" + strings.TrimLeft(name, "/")
}

func (d Dir) qualify(bucket string) Dir {
	if d.Bucket == "" {
		d.Bucket = bucket
	}
	return d
}

// contains reports whether bucket/key lies under the directory on whole segments.
func (d Dir) contains(bucket, key string) bool {
	return d.Bucket == bucket && strings.HasPrefix(key, d.Prefix+"/")
}

func splitSegments(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func hasTraversal(p string) bool {
	for _, s := range strings.Split(p, "/") {
		if s == ".." || s == "." {
			return true
		}
	}
	return false
}
