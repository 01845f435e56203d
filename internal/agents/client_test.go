package agents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, zaptest.NewLogger(t))
	return c, srv
}

func TestGenerateSuccess(t *testing.T) {
	var gotBody map[string]interface{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/agent/query", r.URL.Path)
		require.Equal(t, "answer_generator", r.Header.Get("X-Agent-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":       true,
			"response":      "Use the export API. See https://example.com/docs/export",
			"citation_urls": []string{"https://example.com/docs/export"},
		})
	})

	resp, err := c.Generate(context.Background(), GenerateRequest{
		Question:  "How do I export my data?",
		CharLimit: 500,
		History: []AttemptFeedback{
			{Attempt: 1, Answer: "old answer", Reason: "missing links", RejectedBy: "link_checker"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, resp.Status)
	assert.Equal(t, "Use the export API. See https://example.com/docs/export", resp.Text)
	assert.Equal(t, []string{"https://example.com/docs/export"}, resp.CitationURLs)

	prompt, _ := gotBody["query"].(string)
	assert.Contains(t, prompt, "How do I export my data?")
	assert.Contains(t, prompt, "PREVIOUS ATTEMPTS AND FEEDBACK")
	assert.Contains(t, prompt, "missing links")
	assert.Contains(t, prompt, "link_checker")
	assert.Contains(t, prompt, "under 500 characters")
}

func TestGenerateAgentSideFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "model overloaded",
		})
	})

	resp, err := c.Generate(context.Background(), GenerateRequest{Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, resp.Status)
	assert.Equal(t, "model overloaded", resp.Error)
	assert.Empty(t, resp.Text)
}

func TestGenerateTransportError(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := c.Generate(context.Background(), GenerateRequest{Question: "q"})
	require.Error(t, err)
}

func TestGenerateHTTPError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Generate(context.Background(), GenerateRequest{Question: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestCheckAnswerVerdicts(t *testing.T) {
	replies := map[string]string{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		prompt, _ := body["query"].(string)

		reply := "VALID"
		for marker, r := range replies {
			if strings.Contains(prompt, marker) {
				reply = r
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":  true,
			"response": reply,
		})
	})

	replies["good answer"] = "This looks correct. VALID"
	replies["bad answer"] = "INVALID: the answer contradicts the docs"

	v, err := c.CheckAnswer(context.Background(), "q", "good answer")
	require.NoError(t, err)
	assert.True(t, v.Valid)

	v, err = c.CheckAnswer(context.Background(), "q", "bad answer")
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Contains(t, v.Feedback, "contradicts the docs")
}

func TestClassifyColumnsReturnsRawReply(t *testing.T) {
	reply := "Question Column: Customer Question\nResponse Column: Answer\nDocumentation Column: NONE"
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		prompt, _ := body["query"].(string)
		assert.Contains(t, prompt, "Customer Question | Answer | Notes")
		assert.Contains(t, prompt, "Row 1: q1 | a1 | n1")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":  true,
			"response": reply,
		})
	})

	got, err := c.ClassifyColumns(context.Background(),
		[]string{"Customer Question", "Answer", "Notes"},
		[][]string{{"q1", "a1", "n1"}})
	require.NoError(t, err)
	assert.Equal(t, reply, got)
}

func TestParseVerdict(t *testing.T) {
	cases := []struct {
		reply string
		valid bool
	}{
		{"VALID", true},
		{"valid", true},
		{"The answer is VALID.", true},
		{"INVALID", false},
		{"invalid: wrong figures", false},
		{"VALID but also INVALID in places", false},
		{"", false},
		{"looks fine to me", false},
	}
	for _, tc := range cases {
		v := ParseVerdict(tc.reply)
		assert.Equal(t, tc.valid, v.Valid, "reply %q", tc.reply)
	}
}
