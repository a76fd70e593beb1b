package service

import "strings"

// ImageURLResolver turns stored relative asset paths into absolute URLs for clients
type ImageURLResolver struct {
	baseURL string
}

// NewImageURLResolver creates a resolver that prefixes relative paths with baseURL
func NewImageURLResolver(baseURL string) ImageURLResolver {
	return ImageURLResolver{baseURL: strings.TrimRight(baseURL, "/")}
}

// IsAbsolute reports whether u already carries an external scheme
func IsAbsolute(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Resolve returns the absolute URL for a stored image value. Empty stays empty.
func (r ImageURLResolver) Resolve(stored string) string {
	if stored == "" || IsAbsolute(stored) {
		return stored
	}
	if !strings.HasPrefix(stored, "/") {
		stored = "/" + stored
	}
	return r.baseURL + stored
}

// Unresolve maps a URL previously produced by Resolve back to its relative path.
// Any other value is returned unchanged.
func (r ImageURLResolver) Unresolve(u string) string {
	if r.baseURL == "" || !strings.HasPrefix(u, r.baseURL+"/") {
		return u
	}
	return strings.TrimPrefix(u, r.baseURL)
}
