package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AuthResponse struct {
	User        User      `json:"user"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type Book struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	ISBN        string   `json:"isbn,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	UserID      string   `json:"userId,omitempty"`
}

type Stats struct {
	TotalBooks    int64 `json:"totalBooks"`
	RecentlyAdded int64 `json:"recentlyAdded"`
}

// StatusError is returned when the API answers with an unexpected status
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed (status %d): %s", e.Op, e.Status, e.Body)
}

// Register creates a new account
func (c *APIClient) Register(name, email, password string) (*User, error) {
	body := map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}

	var result struct {
		User User `json:"user"`
	}
	if err := c.do(http.MethodPost, "/auth/register", body, "", http.StatusCreated, &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

// Login exchanges credentials for an access token
func (c *APIClient) Login(email, password string) (*AuthResponse, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var result AuthResponse
	if err := c.do(http.MethodPost, "/auth/login", body, "", http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateBook adds a book to the token owner's catalog
func (c *APIClient) CreateBook(token string, book Book) (*Book, error) {
	var created Book
	if err := c.do(http.MethodPost, "/books", book, token, http.StatusCreated, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListBooks returns the token owner's catalog
func (c *APIClient) ListBooks(token string) ([]Book, error) {
	var books []Book
	if err := c.do(http.MethodGet, "/books", nil, token, http.StatusOK, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// GetBook fetches a single book
func (c *APIClient) GetBook(token, id string) (*Book, error) {
	var book Book
	if err := c.do(http.MethodGet, "/books/"+id, nil, token, http.StatusOK, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// GetStats fetches dashboard counters
func (c *APIClient) GetStats(token string) (*Stats, error) {
	var stats Stats
	if err := c.do(http.MethodGet, "/books/stats", nil, token, http.StatusOK, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *APIClient) do(method, path string, body interface{}, token string, wantStatus int, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s request failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &StatusError{Op: method + " " + path, Status: resp.StatusCode, Body: string(bodyBytes)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
