package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitName(t *testing.T) {
	first, last := User{Name: "John Kamau"}.SplitName()
	assert.Equal(t, "John", first)
	assert.Equal(t, "Kamau", last)

	first, last = User{Name: "Cher"}.SplitName()
	assert.Equal(t, "Cher", first)
	assert.Equal(t, "", last)

	first, last = User{Name: " Mary  Jane Wanjiru "}.SplitName()
	assert.Equal(t, "Mary", first)
	assert.Equal(t, "Jane Wanjiru", last)
}

func TestMiddleware(t *testing.T) {
	var got *User
	var ok bool
	handler := Middleware(DefaultDirectory())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = ContextProvider{}.CurrentUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserHeader, "1")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, ok)
	assert.Equal(t, "user@example.com", got.Email)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserHeader, "404")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, ok)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}
