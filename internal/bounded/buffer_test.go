package bounded_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codeforesight/foresight/internal/bounded"
)

func TestBuffer(t *testing.T) {
	t.Run("stores values within capacity", func(t *testing.T) {
		buf := bounded.NewBuffer(16)
		buf.Set("hello")

		assert.Equal(t, "hello", buf.String())
		assert.Equal(t, 5, buf.Len())
		assert.Equal(t, 16, buf.Cap())
	})

	t.Run("truncates values exceeding capacity", func(t *testing.T) {
		buf := bounded.NewBuffer(8)
		buf.Set(strings.Repeat("x", 100))

		assert.Equal(t, 7, buf.Len())
		assert.Equal(t, strings.Repeat("x", 7), buf.String())
	})

	t.Run("overwrites previous contents", func(t *testing.T) {
		buf := bounded.NewBuffer(32)
		buf.Set("first value")
		buf.Set("second")

		assert.Equal(t, "second", buf.String())
	})

	t.Run("zero capacity stores nothing", func(t *testing.T) {
		buf := bounded.NewBuffer(0)
		buf.Set("dropped")

		assert.Equal(t, "", buf.String())
		assert.Equal(t, 0, buf.Len())
	})
}

func TestNewUser(t *testing.T) {
	t.Run("populates all fields", func(t *testing.T) {
		u := bounded.NewUser(1, "Alice", "alice@example.com")

		assert.Equal(t, 1, u.ID)
		assert.Equal(t, "Alice", u.Name.String())
		assert.Equal(t, "alice@example.com", u.Email.String())
	})

	t.Run("bounds each field independently", func(t *testing.T) {
		longName := strings.Repeat("n", 200)
		longEmail := strings.Repeat("e", 300)
		u := bounded.NewUser(2, longName, longEmail)

		assert.Equal(t, bounded.UserNameCap-1, u.Name.Len())
		assert.Equal(t, bounded.UserEmailCap-1, u.Email.Len())
		assert.Equal(t, strings.Repeat("n", bounded.UserNameCap-1), u.Name.String())
	})
}
