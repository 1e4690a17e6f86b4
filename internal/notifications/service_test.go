package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jellyjams/internal/config"
	"jellyjams/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyPassCompleted(context.Background(), 5, 200, time.Minute); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		publish        func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "pass started",
			publish: func(svc notifications.Service) error {
				return svc.NotifyPassStarted(context.Background(), "scheduled")
			},
			expectTitle:   "JellyJams - Pass Started",
			expectMessage: "Started playlist generation (scheduled)",
			expectTags:    "jellyjams,pass,started",
		},
		{
			name: "pass completed",
			publish: func(svc notifications.Service) error {
				return svc.NotifyPassCompleted(context.Background(), 14, 630, 95*time.Second)
			},
			expectTitle:   "JellyJams - Pass Complete",
			expectMessage: "Generated 14 playlists (630 tracks) in 1m35s",
			expectTags:    "jellyjams,pass,completed",
		},
		{
			name: "pass failed",
			publish: func(svc notifications.Service) error {
				return svc.NotifyPassFailed(context.Background(), errors.New("connection refused"), "library fetch")
			},
			expectTitle:    "JellyJams - Error",
			expectMessage:  "Generation failed during library fetch: connection refused",
			expectTags:     "jellyjams,error,alert",
			expectPriority: "high",
		},
		{
			name: "test notification",
			publish: func(svc notifications.Service) error {
				return svc.TestNotification(context.Background())
			},
			expectTitle:    "JellyJams - Test",
			expectMessage:  "Notification system test",
			expectTags:     "jellyjams,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5
			cfg.Notifications.Passes = true
			cfg.Notifications.Errors = true

			svc := notifications.NewService(&cfg)
			if err := tc.publish(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceHonorsEventToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for suppressed event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Passes = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	ctx := context.Background()

	if err := svc.NotifyPassStarted(ctx, "manual"); err != nil {
		t.Fatalf("suppressed pass start returned error: %v", err)
	}
	if err := svc.NotifyPassCompleted(ctx, 1, 10, time.Second); err != nil {
		t.Fatalf("suppressed pass completion returned error: %v", err)
	}
	if err := svc.NotifyPassFailed(ctx, errors.New("boom"), "covers"); err != nil {
		t.Fatalf("suppressed error event returned error: %v", err)
	}
}

func TestNtfyServiceReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Errors = true

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyPassFailed(context.Background(), errors.New("boom"), ""); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
