package objects

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"onlyu-media/internal/shared/util"
)

var imageExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {}, "svg": {}, "avif": {},
}

// IsImageName reports whether name has an image extension.
func IsImageName(name string) bool {
	_, ok := imageExtensions[strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))]
	return ok
}

// PlaceholderAvatar renders a deterministic SVG avatar for seed: its first
// letter on a background color derived from its hash.
func PlaceholderAvatar(seed string) []byte {
	initial := "?"
	for _, r := range seed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if r < unicode.MaxASCII {
				initial = strings.ToUpper(string(r))
			}
			break
		}
	}
	color := util.HashKey(seed)[:6]
	return []byte(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="200" height="200" viewBox="0 0 200 200">`+
		`<rect width="200" height="200" fill="#%s"/>`+
		`<text x="100" y="100" dy=".35em" text-anchor="middle" font-family="sans-serif" font-size="96" fill="#ffffff">%s</text>`+
		`</svg>`, color, initial))
}
