package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/kataribe-dev/kataribe/pkg/domain/interfaces"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
	"github.com/kataribe-dev/kataribe/pkg/repository/firestore"
	"github.com/kataribe-dev/kataribe/pkg/repository/memory"
)

func newMemoryRepository(t *testing.T) interfaces.Repository {
	t.Helper()
	return memory.New()
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	repo, err := firestore.New(ctx, projectID, databaseID)
	if err != nil {
		t.Fatalf("failed to create firestore repository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("failed to close firestore repository: %v", err)
		}
	})

	return repo
}

// testTenantID returns a unique tenant so runs against a shared
// Firestore project do not collide.
func testTenantID() types.TenantID {
	return types.TenantID(fmt.Sprintf("t-%d", time.Now().UnixNano()))
}
