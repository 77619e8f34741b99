package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/google/uuid"

	"github.com/jwebster45206/improv-engine/pkg/session"
)

func bufioReader() *bufio.Reader {
	return bufio.NewReader(os.Stdin)
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// Request/response mirrors of the API types.

type createSessionRequest struct {
	PlayerName string `json:"player_name"`
}

type createSessionResponse struct {
	ID    uuid.UUID      `json:"id"`
	State *session.State `json:"state"`
}

type performRequest struct {
	Text string `json:"text"`
}

type performResponse struct {
	Reaction string `json:"reaction"`
}

type advanceResponse struct {
	NextScene *session.Round `json:"next_scene,omitempty"`
	Done      bool           `json:"done"`
	Closing   string         `json:"closing,omitempty"`
}

type restartRequest struct {
	Seed *int64 `json:"seed,omitempty"`
}

type saveRequest struct {
	Name string `json:"name"`
}

func decodeResponse(resp *http.Response, out any) error {
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func postJSON(client *http.Client, url string, in, out any) error {
	jsonData, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return decodeResponse(resp, out)
}

func createSession(client *http.Client, baseURL string, playerName string) (*createSessionResponse, error) {
	var out createSessionResponse
	if err := postJSON(client, baseURL+"/v1/sessions", createSessionRequest{PlayerName: playerName}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func getSessionState(client *http.Client, baseURL string, id uuid.UUID) (*session.State, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/sessions/%s", baseURL, id))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var state session.State
	if err := decodeResponse(resp, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func getScene(client *http.Client, baseURL string, id uuid.UUID) (*session.Round, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/sessions/%s/scene", baseURL, id))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var scene session.Round
	if err := decodeResponse(resp, &scene); err != nil {
		return nil, err
	}
	return &scene, nil
}

func performScene(client *http.Client, baseURL string, id uuid.UUID, text string) (*performResponse, error) {
	var out performResponse
	url := fmt.Sprintf("%s/v1/sessions/%s/perform", baseURL, id)
	if err := postJSON(client, url, performRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func advanceSession(client *http.Client, baseURL string, id uuid.UUID) (*advanceResponse, error) {
	var out advanceResponse
	url := fmt.Sprintf("%s/v1/sessions/%s/advance", baseURL, id)
	if err := postJSON(client, url, struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func restartSession(client *http.Client, baseURL string, id uuid.UUID, seed *int64) (*session.State, error) {
	var out session.State
	url := fmt.Sprintf("%s/v1/sessions/%s/restart", baseURL, id)
	if err := postJSON(client, url, restartRequest{Seed: seed}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func saveSession(client *http.Client, baseURL string, id uuid.UUID, name string) error {
	url := fmt.Sprintf("%s/v1/sessions/%s/save", baseURL, id)
	return postJSON(client, url, saveRequest{Name: name}, nil)
}
