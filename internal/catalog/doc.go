// Package catalog defines the normalized music library model shared by the
// classification and assembly stages, along with a TTL-bounded snapshot cache
// that keeps repeated generation passes from hammering the media server.
package catalog
