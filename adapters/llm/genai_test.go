package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/satriahrh/refchat/domain"
)

func TestGenAIClient_Generate_Success(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1beta/models/gemini-2.0-flash:generateContent"), r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Saya asisten Ahmad"}]}}]}`)
	}))
	defer server.Close()

	client, err := NewGenAIClient(context.Background(), server.URL+"/v1beta", "gemini-2.0-flash", "test-key", server.Client())
	require.NoError(t, err)

	reply, err := client.Generate(context.Background(), "Siapa kamu?")

	require.NoError(t, err)
	assert.Equal(t, "Saya asisten Ahmad", reply)
	assert.Contains(t, gotBody, "generationConfig")
}

func TestGenAIClient_Generate_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`)
	}))
	defer server.Close()

	client, err := NewGenAIClient(context.Background(), server.URL+"/v1beta", "m", "k", server.Client())
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "hi")

	var statusErr *domain.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 503, statusErr.Code)
}

func TestGenAIClient_Generate_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{}`)
	}))
	defer server.Close()

	client, err := NewGenAIClient(context.Background(), server.URL+"/v1beta", "m", "k", server.Client())
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "hi")

	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestGenAIClient_Generate_NonTextPart(t *testing.T) {
	tests := []struct {
		name string
		part string
	}{
		{"function call", `{"functionCall":{"name":"lookup","args":{}}}`},
		{"inline data", `{"inlineData":{"mimeType":"image/png","data":"AAAA"}}`},
		{"executable code", `{"executableCode":{"language":"PYTHON","code":"print(1)"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[`+tt.part+`]}}]}`)
			}))
			defer server.Close()

			client, err := NewGenAIClient(context.Background(), server.URL+"/v1beta", "m", "k", server.Client())
			require.NoError(t, err)

			reply, err := client.Generate(context.Background(), "hi")

			assert.ErrorIs(t, err, domain.ErrMalformedResponse)
			assert.Empty(t, reply)
		})
	}
}

func TestIsTextPart(t *testing.T) {
	assert.True(t, isTextPart(&genai.Part{Text: "hai"}))
	assert.True(t, isTextPart(&genai.Part{}))
	assert.False(t, isTextPart(nil))
	assert.False(t, isTextPart(&genai.Part{FunctionCall: &genai.FunctionCall{Name: "lookup"}}))
	assert.False(t, isTextPart(&genai.Part{FileData: &genai.FileData{FileURI: "gs://b/o"}}))
}

func TestNewGenAIClient_RequiresKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := NewGenAIClient(context.Background(), "http://localhost/v1beta", "m", "", nil)

	assert.Error(t, err)
}

func TestSplitAPIVersion(t *testing.T) {
	tests := []struct {
		in        string
		root, ver string
	}{
		{"https://generativelanguage.googleapis.com/v1beta", "https://generativelanguage.googleapis.com/", "v1beta"},
		{"http://127.0.0.1:8080/v1/", "http://127.0.0.1:8080/", "v1"},
		{"http://127.0.0.1:8080", "http://127.0.0.1:8080", ""},
	}
	for _, tt := range tests {
		root, ver := splitAPIVersion(tt.in)
		assert.Equal(t, tt.root, root, tt.in)
		assert.Equal(t, tt.ver, ver, tt.in)
	}
}
