package chatcmder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// apiClient talks to a running elicitd server. The cookie jar keeps the
// session cookie across turns, same as a browser would.
type apiClient struct {
	serverURL  string
	httpClient *http.Client
}

func newAPIClient(serverURL string) (*apiClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &apiClient{
		serverURL: serverURL,
		httpClient: &http.Client{
			Jar: jar,
			// Matches the server's own upstream patience
			Timeout: 2 * time.Minute,
		},
	}, nil
}

type chatAPIResponse struct {
	Status    string `json:"status"`
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// Send posts one chat turn and returns the assistant's reply.
func (a *apiClient) Send(message string) (string, error) {
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	resp, err := a.httpClient.Post(a.serverURL+"/api/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed chatAPIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if parsed.Status != "success" {
		return "", fmt.Errorf("server error: %s", parsed.Response)
	}

	return parsed.Response, nil
}

type specAPIResponse struct {
	Status        string `json:"status"`
	Specification string `json:"specification"`
	Filename      string `json:"filename"`
	Message       string `json:"message"`
}

// GenerateSpec asks the server to produce an SRS from the current session.
func (a *apiClient) GenerateSpec() (string, string, error) {
	resp, err := a.httpClient.Post(a.serverURL+"/api/generate-spec", "application/json", nil)
	if err != nil {
		return "", "", fmt.Errorf("generate-spec request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read response: %w", err)
	}

	var parsed specAPIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", "", fmt.Errorf("unmarshal response: %w", err)
	}

	if parsed.Status != "success" {
		return "", "", fmt.Errorf("server error: %s", parsed.Message)
	}

	return parsed.Specification, parsed.Filename, nil
}

// NewSession rotates to a fresh session and returns its id.
func (a *apiClient) NewSession() (string, error) {
	resp, err := a.httpClient.Post(a.serverURL+"/api/new-session", "application/json", nil)
	if err != nil {
		return "", fmt.Errorf("new-session request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed struct {
		Status    string `json:"status"`
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if parsed.Status != "success" {
		return "", fmt.Errorf("server error: %s", parsed.Message)
	}

	return parsed.SessionID, nil
}
