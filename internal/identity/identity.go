package identity

import (
	"context"
	"net/http"
	"strings"
)

type Role string

const (
	RoleUser     Role = "user"
	RoleMerchant Role = "merchant"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// SplitName splits a display name into first and last name on the first space.
func (u User) SplitName() (first, last string) {
	name := strings.TrimSpace(u.Name)
	first, last, _ = strings.Cut(name, " ")
	return first, strings.TrimSpace(last)
}

// Provider answers who the current user is. It is never written by the storefront core.
type Provider interface {
	CurrentUser(ctx context.Context) (*User, bool)
}

// Directory resolves a user by id.
type Directory interface {
	Lookup(id string) (*User, bool)
}

// StaticDirectory is the storefront's set of demo accounts.
type StaticDirectory map[string]User

func DefaultDirectory() StaticDirectory {
	return StaticDirectory{
		"1": {ID: "1", Name: "John Kamau", Email: "user@example.com", Role: RoleUser},
		"2": {ID: "2", Name: "Wanjiku Furniture", Email: "merchant@example.com", Role: RoleMerchant},
		"3": {ID: "3", Name: "Admin User", Email: "admin@example.com", Role: RoleAdmin},
	}
}

func (d StaticDirectory) Lookup(id string) (*User, bool) {
	u, ok := d[id]
	if !ok {
		return nil, false
	}
	return &u, true
}

type contextKey struct{}

func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// ContextProvider reads the user placed in the context by Middleware.
type ContextProvider struct{}

func (ContextProvider) CurrentUser(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(contextKey{}).(*User)
	return u, ok && u != nil
}

const UserHeader = "X-User-ID"

// Middleware resolves the X-User-ID header against the directory. Unknown or
// missing ids leave the request anonymous; there is no real authentication.
func Middleware(dir Directory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(UserHeader))
			if id != "" {
				if u, ok := dir.Lookup(id); ok {
					r = r.WithContext(WithUser(r.Context(), u))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
