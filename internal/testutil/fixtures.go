package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/bookshelf/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	name     string
	email    string
	password string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		name:     fmt.Sprintf("testuser_%s", suffix),
		email:    fmt.Sprintf("testuser_%s@example.com", suffix),
		password: "testpassword123",
	}
}

// WithName sets the display name
func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         b.name,
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// UserResponse matches the API user payload
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisterResponse matches the API register response
type RegisterResponse struct {
	User UserResponse `json:"user"`
}

// AuthResponse matches the API login response
type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
}

// BookResponse matches the API book payload
type BookResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	ISBN        string    `json:"isbn"`
	Tags        []string  `json:"tags"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BuildAndAuthenticate registers and logs in a user via the API and returns
// the user and access token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	registerBody, _ := json.Marshal(map[string]string{
		"name":     b.name,
		"email":    b.email,
		"password": b.password,
	})
	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(registerBody))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected register status code: %d", resp.StatusCode)
	}

	loginBody, _ := json.Marshal(map[string]string{
		"email":    b.email,
		"password": b.password,
	})
	resp, err = http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewBuffer(loginBody))
	if err != nil {
		t.Fatalf("failed to log in user: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	userID, _ := uuid.Parse(authResp.User.ID)
	user := &domain.User{
		ID:    userID,
		Name:  authResp.User.Name,
		Email: authResp.User.Email,
	}

	return user, authResp.AccessToken
}

// BookBuilder creates test books with a builder pattern
type BookBuilder struct {
	owner       *domain.User
	title       string
	author      string
	description string
	isbn        string
	tags        []string
	createdAt   time.Time
}

// NewBookBuilder creates a new BookBuilder with default values
func NewBookBuilder() *BookBuilder {
	return &BookBuilder{
		title:     fmt.Sprintf("Test Book %s", uuid.New().String()[:6]),
		author:    "Test Author",
		createdAt: time.Now(),
	}
}

// WithOwner sets the owning user
func (b *BookBuilder) WithOwner(user *domain.User) *BookBuilder {
	b.owner = user
	return b
}

// WithTitle sets the title
func (b *BookBuilder) WithTitle(title string) *BookBuilder {
	b.title = title
	return b
}

// WithAuthor sets the author
func (b *BookBuilder) WithAuthor(author string) *BookBuilder {
	b.author = author
	return b
}

// WithDescription sets the description
func (b *BookBuilder) WithDescription(description string) *BookBuilder {
	b.description = description
	return b
}

// WithISBN sets the ISBN
func (b *BookBuilder) WithISBN(isbn string) *BookBuilder {
	b.isbn = isbn
	return b
}

// WithTags sets the tags
func (b *BookBuilder) WithTags(tags []string) *BookBuilder {
	b.tags = tags
	return b
}

// WithCreatedAt backdates the book
func (b *BookBuilder) WithCreatedAt(createdAt time.Time) *BookBuilder {
	b.createdAt = createdAt
	return b
}

// Build creates the book in the database, creating an owner if none was set
func (b *BookBuilder) Build(t *testing.T, db *gorm.DB) *domain.Book {
	t.Helper()

	if b.owner == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.owner = user
	}

	book := &domain.Book{
		ID:          uuid.New(),
		Title:       b.title,
		Author:      b.author,
		Description: b.description,
		ISBN:        b.isbn,
		OwnerID:     b.owner.ID,
		CreatedAt:   b.createdAt,
		UpdatedAt:   b.createdAt,
	}
	book.SetTags(b.tags)

	if err := db.Create(book).Error; err != nil {
		t.Fatalf("failed to create book: %v", err)
	}

	return book
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// DoAuthenticated sends an authenticated JSON request
func DoAuthenticated(t *testing.T, method, url string, body interface{}, token string) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(CreateAuthenticatedRequest(t, method, url, body, token))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
