// Package testusers holds the SauceDemo accounts shared by every suite.
package testusers

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"os"

	"shopqa/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

var ErrUnknownUser = errors.New("user not found in test configuration")

//go:embed users.yaml
var defaultUsersYAML []byte

type file struct {
	Password string            `yaml:"password"`
	Users    []entity.TestUser `yaml:"users"`
}

// Catalog is an ordered, read-only set of test users.
type Catalog struct {
	password string
	users    []entity.TestUser
}

// Default returns the built-in SauceDemo catalog.
func Default() *Catalog {
	c, err := Parse(defaultUsersYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded users.yaml: %v", err))
	}
	return c
}

// Load reads a catalog from a YAML file with the same layout as users.yaml.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse users: %w", err)
	}
	if len(f.Users) == 0 {
		return nil, errors.New("parse users: no users defined")
	}

	users := make([]entity.TestUser, 0, len(f.Users))
	for _, u := range f.Users {
		if u.Username == "" {
			return nil, errors.New("parse users: user without username")
		}
		if u.Password == "" {
			u.Password = f.Password
		}
		users = append(users, u)
	}

	return &Catalog{password: f.Password, users: users}, nil
}

// CommonPassword is the password shared by all users.
func (c *Catalog) CommonPassword() string {
	return c.password
}

func (c *Catalog) All() []entity.TestUser {
	out := make([]entity.TestUser, len(c.users))
	copy(out, c.users)
	return out
}

// Usernames returns the user keys in catalog order.
func (c *Catalog) Usernames() []string {
	out := make([]string, 0, len(c.users))
	for _, u := range c.users {
		out = append(out, u.Username)
	}
	return out
}

func (c *Catalog) Get(username string) (entity.TestUser, error) {
	for _, u := range c.users {
		if u.Username == username {
			return u, nil
		}
	}
	return entity.TestUser{}, fmt.Errorf("%w: %s", ErrUnknownUser, username)
}

// Credentials returns the username and password for a known user.
func (c *Catalog) Credentials(username string) (string, string, error) {
	u, err := c.Get(username)
	if err != nil {
		return "", "", err
	}
	return u.Username, u.Password, nil
}

// Random picks a user whose type differs from excludeType.
func (c *Catalog) Random(excludeType string, rng *rand.Rand) (entity.TestUser, bool) {
	candidates := make([]entity.TestUser, 0, len(c.users))
	for _, u := range c.users {
		if u.Type != excludeType {
			candidates = append(candidates, u)
		}
	}
	if len(candidates) == 0 {
		return entity.TestUser{}, false
	}
	return candidates[rng.Intn(len(candidates))], true
}

// Records converts every user into a test data record.
func (c *Catalog) Records() entity.DataSet {
	out := make(entity.DataSet, 0, len(c.users))
	for _, u := range c.users {
		out = append(out, u.Record())
	}
	return out
}
