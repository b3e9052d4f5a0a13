// ABOUTME: Local user registration and login gate
// ABOUTME: bcrypt hashes for new users; legacy plaintext entries are upgraded on login
package crm

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/sustentalski/salescrm/models"
)

// Registration and login errors. Messages are shown to the user as-is.
var (
	ErrUserExists       = errors.New("username already exists")
	ErrTooShort         = errors.New("username and password must have at least 3 characters")
	ErrMissingProfile   = errors.New("fill in every profile field")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidCPF       = errors.New("invalid CPF")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrBadCredentials   = errors.New("username or password incorrect")
	ErrNotLoggedIn      = errors.New("not logged in")
)

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	cpfPattern   = regexp.MustCompile(`^\d{3}\.?\d{3}\.?\d{3}-?\d{2}$`)
	nonDigits    = regexp.MustCompile(`[^0-9]`)
)

// validCPF checks the digits of cpf; separators are ignored.
func validCPF(cpf string) bool {
	return cpfPattern.MatchString(nonDigits.ReplaceAllString(cpf, ""))
}

// Registration is the sign-up form.
type Registration struct {
	Username  string
	Password  string
	Confirm   string // optional; checked only when set
	FullName  string
	CepOrCity string
	CPF       string
	Email     string
}

// Register validates r, stores the user and starts a session for them.
// Nothing is written when validation fails.
func (s *State) Register(r Registration) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.TrimSpace(r.Username)
	users := s.users.Get()
	if _, exists := users[username]; exists {
		return models.User{}, ErrUserExists
	}
	if utf8.RuneCountInString(username) < 3 || utf8.RuneCountInString(r.Password) < 3 {
		return models.User{}, ErrTooShort
	}
	if r.Confirm != "" && r.Confirm != r.Password {
		return models.User{}, ErrPasswordMismatch
	}
	for _, v := range []string{r.FullName, r.CepOrCity, r.CPF, r.Email} {
		if strings.TrimSpace(v) == "" {
			return models.User{}, ErrMissingProfile
		}
	}
	if !emailPattern.MatchString(r.Email) {
		return models.User{}, ErrInvalidEmail
	}
	if !validCPF(r.CPF) {
		return models.User{}, ErrInvalidCPF
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	u := models.User{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(r.FullName),
		CepOrCity:    strings.TrimSpace(r.CepOrCity),
		CPF:          strings.TrimSpace(r.CPF),
		Email:        strings.TrimSpace(r.Email),
	}
	s.users.Update(func(m map[string]models.User) map[string]models.User {
		out := make(map[string]models.User, len(m)+1)
		for k, v := range m {
			out[k] = v
		}
		out[username] = u
		return out
	})
	s.session.Set(username)
	s.logger.Info("user registered", "username", username)
	return u, nil
}

// Login checks the credentials and starts a session. The error does not say
// which of the two was wrong.
func (s *State) Login(username, password string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.TrimSpace(username)
	u, ok := s.users.Get()[username]
	if !ok {
		return models.User{}, ErrBadCredentials
	}

	switch {
	case u.PasswordHash != "":
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			return models.User{}, ErrBadCredentials
		}
	case u.Password != "" && u.Password == password:
		if hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost); err == nil {
			u.PasswordHash = string(hash)
			u.Password = ""
			s.users.Update(func(m map[string]models.User) map[string]models.User {
				out := make(map[string]models.User, len(m))
				for k, v := range m {
					out[k] = v
				}
				out[username] = u
				return out
			})
		} else {
			s.logger.Warn("failed to upgrade legacy password", "username", username, "err", err)
		}
	default:
		return models.User{}, ErrBadCredentials
	}

	if u.Username == "" {
		u.Username = username
	}
	s.session.Set(username)
	return u, nil
}

// Logout ends the session.
func (s *State) Logout() {
	s.session.Set("")
}

// CurrentUser returns the logged-in user.
func (s *State) CurrentUser() (models.User, error) {
	name := s.session.Get()
	if name == "" {
		return models.User{}, ErrNotLoggedIn
	}
	u, ok := s.users.Get()[name]
	if !ok {
		return models.User{}, ErrNotLoggedIn
	}
	if u.Username == "" {
		u.Username = name
	}
	return u, nil
}

// LoggedIn reports whether a session is active.
func (s *State) LoggedIn() bool {
	_, err := s.CurrentUser()
	return err == nil
}
