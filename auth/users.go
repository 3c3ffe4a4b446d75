package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type account struct {
	user User
	hash []byte
}

// Directory is the fixed set of users allowed to log in.
type Directory struct {
	accounts map[string]account
	// compared against when the username is unknown so both paths cost a bcrypt run
	dummy []byte
}

// NewDirectory builds the two built-in users, hashing their passwords.
func NewDirectory(adminPassword, userPassword string) (*Directory, error) {
	d := &Directory{accounts: map[string]account{}}
	for _, a := range []struct {
		user     User
		password string
	}{
		{User{Username: "admin", Name: "Administrador"}, adminPassword},
		{User{Username: "user", Name: "Utilizador"}, userPassword},
	} {
		if err := d.Add(a.user, a.password); err != nil {
			return nil, err
		}
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-password"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	d.dummy = dummy
	return d, nil
}

// Add registers u with a plain password.
func (d *Directory) Add(u User, password string) error {
	if password == "" {
		return fmt.Errorf("empty password for user %q", u.Username)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password for %q: %w", u.Username, err)
	}
	d.accounts[u.Username] = account{user: u, hash: hash}
	return nil
}

// Authenticate returns the user when username and password match.
func (d *Directory) Authenticate(username, password string) (User, bool) {
	a, ok := d.accounts[username]
	if !ok {
		if d.dummy != nil {
			_ = bcrypt.CompareHashAndPassword(d.dummy, []byte(password))
		}
		return User{}, false
	}
	if bcrypt.CompareHashAndPassword(a.hash, []byte(password)) != nil {
		return User{}, false
	}
	return a.user, true
}
