package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNotifier captures the summaries it is asked to deliver.
type recordingNotifier struct {
	summaries []*RunSummary
}

func (r *recordingNotifier) Notify(summary *RunSummary) error {
	r.summaries = append(r.summaries, summary)
	return nil
}

func (r *recordingNotifier) Name() string { return "recording" }

func TestManagerPolicies(t *testing.T) {
	green := &RunSummary{TotalTests: 3, PassedTests: 3}
	red := &RunSummary{TotalTests: 3, PassedTests: 2, FailedTests: 1}

	tests := []struct {
		name     string
		notifyOn NotifyOn
		runs     []*RunSummary
		want     int
	}{
		{
			name:     "always notifies every run",
			notifyOn: NotifyAlways,
			runs:     []*RunSummary{green, red, green},
			want:     3,
		},
		{
			name:     "failure only on red runs",
			notifyOn: NotifyFailure,
			runs:     []*RunSummary{green, red, green},
			want:     1,
		},
		{
			name:     "success only on green runs",
			notifyOn: NotifySuccess,
			runs:     []*RunSummary{green, red, green},
			want:     2,
		},
		{
			name:     "recovery on red and on the green after it",
			notifyOn: NotifyRecovery,
			runs:     []*RunSummary{green, red, green, green},
			want:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &recordingNotifier{}
			manager := NewManager(tt.notifyOn, recorder)

			for _, run := range tt.runs {
				// Copy so IsRecovery mutation does not leak across cases.
				summary := *run
				require.NoError(t, manager.Notify(&summary))
			}

			assert.Len(t, recorder.summaries, tt.want)
		})
	}
}

func TestManagerMarksRecovery(t *testing.T) {
	recorder := &recordingNotifier{}
	manager := NewManager(NotifyRecovery, recorder)

	require.NoError(t, manager.Notify(&RunSummary{FailedTests: 1}))
	require.NoError(t, manager.Notify(&RunSummary{PassedTests: 1}))

	require.Len(t, recorder.summaries, 2)
	assert.False(t, recorder.summaries[0].IsRecovery)
	assert.True(t, recorder.summaries[1].IsRecovery)
}

func TestSlackNotifier(t *testing.T) {
	var received slackMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(server.URL,
		WithSlackChannel("#css"),
		WithSlackUsername("stylebot"),
	)

	err := notifier.Notify(&RunSummary{
		TotalTests:  5,
		PassedTests: 4,
		FailedTests: 1,
		Duration:    120 * time.Millisecond,
		FailedResults: []FailedTest{
			{Name: "brand color applied", File: "buttons.sheet.yaml", Errors: []string{"expected blue, got red"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "#css", received.Channel)
	assert.Equal(t, "stylebot", received.Username)
	require.Len(t, received.Attachments, 1)
	assert.Equal(t, "danger", received.Attachments[0].Color)
	assert.Contains(t, received.Attachments[0].Title, "1 stylesheet test(s) failed")
	assert.Contains(t, received.Attachments[0].Text, "brand color applied")
}

func TestSlackNotifierErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(server.URL)
	err := notifier.Notify(&RunSummary{PassedTests: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestWebhookNotifier(t *testing.T) {
	var received webhookPayload
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, WithWebhookHeader("Authorization", "Bearer token"))

	err := notifier.Notify(&RunSummary{TotalTests: 2, PassedTests: 2})
	require.NoError(t, err)

	assert.Equal(t, "Bearer token", gotAuth)
	assert.Equal(t, "run.passed", received.Event)
	assert.Equal(t, "sheetspec", received.Source)
	require.NotNil(t, received.Summary)
	assert.Equal(t, 2, received.Summary.TotalTests)
}

func TestWebhookNotifierEvents(t *testing.T) {
	tests := []struct {
		name    string
		summary *RunSummary
		want    string
	}{
		{"passed", &RunSummary{PassedTests: 1}, "run.passed"},
		{"failed", &RunSummary{FailedTests: 1}, "run.failed"},
		{"recovered", &RunSummary{PassedTests: 1, IsRecovery: true}, "run.recovered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received webhookPayload
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				require.NoError(t, json.Unmarshal(body, &received))
			}))
			defer server.Close()

			notifier := NewWebhookNotifier(server.URL)
			require.NoError(t, notifier.Notify(tt.summary))
			assert.Equal(t, tt.want, received.Event)
		})
	}
}
