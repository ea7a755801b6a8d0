package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"portal:pw@tcp(db:3306)/bqomis?charset=utf8mb4&parseTime=true&loc=UTC",
		DSN("portal", "pw", "db", "3306", "bqomis"))
	assert.Equal(t,
		"portal@tcp(db:3306)/bqomis?charset=utf8mb4&parseTime=true&loc=UTC",
		DSN("portal", "", "db", "3306", "bqomis"))
}

func TestMigrateRejectsBadDSN(t *testing.T) {
	err := Migrate("not a dsn")
	assert.Error(t, err)
}
