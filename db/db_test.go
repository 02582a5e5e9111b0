package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	query := "SELECT id FROM users WHERE username = $1 AND is_admin = $2"

	// Postgres keeps the $N style untouched.
	assert.Equal(t, query, Rebind("postgres", query))

	// MySQL gets ? placeholders.
	assert.Equal(t,
		"SELECT id FROM users WHERE username = ? AND is_admin = ?",
		Rebind("mysql", query))
}

func TestRebind_MultiDigitPlaceholders(t *testing.T) {
	query := "INSERT INTO trade_log VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)"
	assert.Equal(t,
		"INSERT INTO trade_log VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		Rebind("mysql", query))
}

func TestRebind_DollarWithoutDigit(t *testing.T) {
	query := "SELECT '$' FROM dual WHERE note = $1"
	assert.Equal(t, "SELECT '$' FROM dual WHERE note = ?", Rebind("mysql", query))
}

func TestSelectDriver(t *testing.T) {
	// Both drivers are blank-imported by this package.
	driver, err := SelectDriver("mysql")
	assert.NoError(t, err)
	assert.Equal(t, "mysql", driver)

	driver, err = SelectDriver("postgres")
	assert.NoError(t, err)
	assert.Equal(t, "postgres", driver)

	// Unregistered driver falls back to the preference order.
	driver, err = SelectDriver("oracle")
	assert.NoError(t, err)
	assert.Equal(t, "mysql", driver)

	// Empty preference also resolves via the fallback order.
	driver, err = SelectDriver("")
	assert.NoError(t, err)
	assert.Equal(t, "mysql", driver)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(&pq.Error{Code: "23505"}))
	assert.True(t, isDuplicateKey(&mysql.MySQLError{Number: 1062}))

	// Wrapped driver errors are still recognized.
	wrapped := fmt.Errorf("failed to execute query: %w", &mysql.MySQLError{Number: 1062})
	assert.True(t, isDuplicateKey(wrapped))

	assert.False(t, isDuplicateKey(&pq.Error{Code: "23503"}))
	assert.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1048}))
	assert.False(t, isDuplicateKey(errors.New("connection reset")))
}

func TestNewInvitationToken(t *testing.T) {
	a, err := NewInvitationToken()
	assert.NoError(t, err)
	assert.Len(t, a, 64)

	b, err := NewInvitationToken()
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}
