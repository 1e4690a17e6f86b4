package services

import "context"

type contextKey string

const (
	passIDKey   contextKey = "pass_id"
	playlistKey contextKey = "playlist"
	userKey     contextKey = "user"
)

// WithPassID annotates context with the generation pass identifier.
func WithPassID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, passIDKey, id)
}

// PassIDFromContext extracts the generation pass identifier if present.
func PassIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(passIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithPlaylist annotates context with the playlist currently being processed.
func WithPlaylist(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, playlistKey, name)
}

// PlaylistFromContext returns the playlist name if present.
func PlaylistFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(playlistKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithUser annotates context with the user a personal playlist belongs to.
func WithUser(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, userKey, name)
}

// UserFromContext returns the user name if present.
func UserFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(userKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
