package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"hardware-management-api/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// ErrInvalidCredentials is returned when an email/password pair is rejected
var ErrInvalidCredentials = errors.New("invalid email or password")

// Directory checks credentials and resolves the session identity
type Directory interface {
	Authenticate(ctx context.Context, email, password string) (models.Identity, error)
}

// DemoDirectory accepts any password and derives the role from the email
type DemoDirectory struct{}

func (DemoDirectory) Authenticate(_ context.Context, email, _ string) (models.Identity, error) {
	return DemoIdentity(email), nil
}

// DemoIdentity maps an email to its demo identity. Matching is on the
// lowercased address: "admin" wins over "hr".
func DemoIdentity(email string) models.Identity {
	lower := strings.ToLower(strings.TrimSpace(email))
	switch {
	case strings.Contains(lower, "admin"):
		return models.Identity{Email: lower, Name: "Admin User", Role: models.RoleAdmin}
	case strings.Contains(lower, "hr"):
		return models.Identity{Email: lower, Name: "HR User", Role: models.RoleHR}
	default:
		return models.Identity{Email: lower, Name: "Employee User", Role: models.RoleEmployee}
	}
}

// FileDirectory authenticates against bcrypt hashes from a users file
type FileDirectory struct {
	users map[string]models.UserRecord
}

type usersFile struct {
	Users []models.UserRecord `yaml:"users"`
}

// LoadUsersFile reads a YAML users file of the form
//
//	users:
//	  - email: jane@example.com
//	    name: Jane Doe
//	    role: hr
//	    password_hash: $2a$10$...
func LoadUsersFile(path string) (*FileDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	return ParseUsers(data)
}

// ParseUsers builds a directory from users file contents
func ParseUsers(data []byte) (*FileDirectory, error) {
	var f usersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse users file: %w", err)
	}

	dir := &FileDirectory{users: make(map[string]models.UserRecord, len(f.Users))}
	for i, u := range f.Users {
		key := strings.ToLower(strings.TrimSpace(u.Email))
		if key == "" {
			return nil, fmt.Errorf("user %d: email is required", i+1)
		}
		if !models.IsValidRole(u.Role) {
			return nil, fmt.Errorf("user %s: invalid role %q", key, u.Role)
		}
		if u.PasswordHash == "" {
			return nil, fmt.Errorf("user %s: password_hash is required", key)
		}
		if _, dup := dir.users[key]; dup {
			return nil, fmt.Errorf("user %s: duplicate entry", key)
		}
		dir.users[key] = u
	}
	return dir, nil
}

func (d *FileDirectory) Authenticate(_ context.Context, email, password string) (models.Identity, error) {
	u, ok := d.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return models.Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.Identity{}, ErrInvalidCredentials
	}
	return u.Identity(), nil
}

// Len returns the number of configured users
func (d *FileDirectory) Len() int {
	return len(d.users)
}

// HashPassword returns the bcrypt hash stored in the users file
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
