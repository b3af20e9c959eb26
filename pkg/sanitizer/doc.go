// Package sanitizer cleans user-supplied display names before they reach
// the blob store. It combines [github.com/microcosm-cc/bluemonday] for markup
// removal with Unicode NFC normalization from [golang.org/x/text].
package sanitizer
