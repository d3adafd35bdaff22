package workspace

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lalith-99/huddle/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	maxNameLength     = 50
	maxHandleLength   = 20
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Profile is the public view of a user. Removed users still resolve,
// with their anonymized fields.
type Profile struct {
	UID       int    `json:"u_id"`
	Email     string `json:"email"`
	NameFirst string `json:"name_first"`
	NameLast  string `json:"name_last"`
	HandleStr string `json:"handle_str"`
}

func profileOf(u *models.User) Profile {
	return Profile{
		UID:       u.ID,
		Email:     u.Email,
		NameFirst: u.NameFirst,
		NameLast:  u.NameLast,
		HandleStr: u.HandleStr,
	}
}

type RegisterParams struct {
	Email     string
	Password  string
	NameFirst string
	NameLast  string
}

// Register creates a user and returns its ID. The first user ever
// registered becomes a global owner.
func (e *Engine) Register(ctx context.Context, p RegisterParams) (int, error) {
	if !emailPattern.MatchString(p.Email) {
		return 0, invalid("email %q is not valid", p.Email)
	}
	if len(p.Password) < minPasswordLength {
		return 0, invalid("password must be at least %d characters", minPasswordLength)
	}
	for _, name := range []string{p.NameFirst, p.NameLast} {
		if n := utf8.RuneCountInString(name); n < 1 || n > maxNameLength {
			return 0, invalid("names must be 1 to %d characters", maxNameLength)
		}
	}

	// Hashing is slow on purpose; do it before taking the engine lock.
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), e.passwordCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	var id int
	err = e.update(ctx, func(tx *txn) error {
		if _, ok := tx.userByEmail(p.Email); ok {
			return conflict("email %q is already registered", p.Email)
		}
		role := models.RoleMember
		if len(tx.ws.Users) == 0 {
			role = models.RoleOwner
		}
		tx.ws.LastUserID++
		u := &models.User{
			ID:            tx.ws.LastUserID,
			Email:         p.Email,
			NameFirst:     p.NameFirst,
			NameLast:      p.NameLast,
			HandleStr:     tx.newHandle(p.NameFirst, p.NameLast),
			PasswordHash:  string(hash),
			Role:          role,
			Notifications: []models.Notification{},
		}
		tx.ws.Users = append(tx.ws.Users, u)
		tx.users[u.ID] = u
		id = u.ID
		return nil
	})
	return id, err
}

// Login checks credentials and returns the user ID. Unknown email and
// wrong password fail identically.
func (e *Engine) Login(ctx context.Context, email, password string) (int, error) {
	var (
		id   int
		hash string
	)
	err := e.view(ctx, func(tx *txn) error {
		u, ok := tx.userByEmail(email)
		if !ok {
			return invalid("invalid email or password")
		}
		id, hash = u.ID, u.PasswordHash
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return 0, invalid("invalid email or password")
	}
	return id, nil
}

func (e *Engine) Profile(ctx context.Context, actorID, uid int) (Profile, error) {
	var profile Profile
	err := e.view(ctx, func(tx *txn) error {
		if _, err := tx.actor(actorID); err != nil {
			return err
		}
		u, ok := tx.users[uid]
		if !ok {
			return notFound("user %d does not exist", uid)
		}
		profile = profileOf(u)
		return nil
	})
	return profile, err
}

// ListUsers returns every active user. Removed users are left out.
func (e *Engine) ListUsers(ctx context.Context, actorID int) ([]Profile, error) {
	var profiles []Profile
	err := e.view(ctx, func(tx *txn) error {
		if _, err := tx.actor(actorID); err != nil {
			return err
		}
		profiles = make([]Profile, 0, len(tx.ws.Users))
		for _, u := range tx.ws.Users {
			if !u.Removed {
				profiles = append(profiles, profileOf(u))
			}
		}
		return nil
	})
	return profiles, err
}

func (tx *txn) userByEmail(email string) (*models.User, bool) {
	for _, u := range tx.ws.Users {
		if !u.Removed && strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return nil, false
}

// newHandle derives a handle from the lowercase alphanumerics of the
// name, cut to 20 characters. A taken handle gets the smallest free
// numeric suffix, starting from 0.
func (tx *txn) newHandle(first, last string) string {
	var b strings.Builder
	count := 0
	for _, r := range first + last {
		if count == maxHandleLength {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			count++
		}
	}
	base := b.String()
	if base == "" {
		base = "user"
	}

	taken := tx.handleSet()
	if _, ok := taken[base]; !ok {
		return base
	}
	for i := 0; ; i++ {
		candidate := base + strconv.Itoa(i)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
