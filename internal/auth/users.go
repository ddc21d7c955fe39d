package auth

import (
	"crypto/subtle"
	"errors"

	"github.com/google/uuid"

	"github.com/leslieo2/hotel-booking-mock/internal/config"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password
var ErrInvalidCredentials = errors.New("invalid username or password")

// User is the public view of an account
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type account struct {
	user     User
	password string
}

// UserStore holds the configured demo accounts
type UserStore struct {
	accounts map[string]account
	order    []string
}

// NewUserStore builds a store from configuration. User ids are derived from
// usernames so tokens stay valid across restarts.
func NewUserStore(users []config.DemoUser) *UserStore {
	s := &UserStore{accounts: make(map[string]account, len(users))}
	for _, u := range users {
		s.accounts[u.Username] = account{
			user: User{
				ID:       uuid.NewSHA1(uuid.NameSpaceOID, []byte("hotel-booking-mock/user/"+u.Username)).String(),
				Username: u.Username,
				Email:    u.Email,
				FullName: u.FullName,
				Role:     u.Role,
			},
			password: u.Password,
		}
		s.order = append(s.order, u.Username)
	}
	return s
}

// Authenticate returns the user when username and password match
func (s *UserStore) Authenticate(username, password string) (User, error) {
	acc, ok := s.accounts[username]
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(acc.password), []byte(password)) != 1 {
		return User{}, ErrInvalidCredentials
	}
	return acc.user, nil
}

// Lookup finds a user by username
func (s *UserStore) Lookup(username string) (User, bool) {
	acc, ok := s.accounts[username]
	return acc.user, ok
}

// Credential is a demo login advertised to API consumers
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Credentials lists the demo logins in configuration order
func (s *UserStore) Credentials() []Credential {
	out := make([]Credential, 0, len(s.order))
	for _, name := range s.order {
		acc := s.accounts[name]
		out = append(out, Credential{Username: name, Password: acc.password, Role: acc.user.Role})
	}
	return out
}
