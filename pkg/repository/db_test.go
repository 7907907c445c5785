package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/policyflow/policyflow/internal/db/migrate"
	"github.com/policyflow/policyflow/pkg/domain"
)

// testDB opens the database named by TEST_DATABASE_URL with migrations
// applied. Tests calling it are skipped when the variable is unset.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("set TEST_DATABASE_URL to run database tests")
	}
	if err := migrate.Run(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	conn, err := NewDBFromURL(dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func seedUser(t *testing.T, conn *sql.DB) *domain.User {
	t.Helper()
	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("%s@example.com", uuid.NewString()),
		PasswordHash: "not-a-real-hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := NewUsersRepository(conn).Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedOrganization(t *testing.T, conn *sql.DB, ownerID uuid.UUID) *domain.Organization {
	t.Helper()
	now := time.Now().UTC()
	org := &domain.Organization{
		ID:        uuid.New(),
		Name:      "Acme " + uuid.NewString()[:8],
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := NewOrganizationsRepository(conn).Create(context.Background(), org); err != nil {
		t.Fatalf("seed organization: %v", err)
	}
	return org
}
