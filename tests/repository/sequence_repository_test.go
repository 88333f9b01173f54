package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/repository"
	"github.com/adicipta/procure-api/tests/testutil"
)

func TestNextNumberStartsAtOne(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewDocumentSequenceRepository(db)
	ctx := context.Background()

	n, err := repo.NextNumber(ctx, domain.DocTypePurchaseOrder, "ACME", "")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestNextNumberIsMonotonic(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewDocumentSequenceRepository(db)
	ctx := context.Background()

	for want := 1; want <= 5; want++ {
		n, err := repo.NextNumber(ctx, domain.DocTypePayment, "ACME", "")
		require.NoError(t, err)
		require.Equal(t, want, n)
	}
}

func TestNextNumberKeysAreIndependent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewDocumentSequenceRepository(db)
	ctx := context.Background()

	// Warm up one key so the others prove they do not share its counter
	for i := 0; i < 3; i++ {
		_, err := repo.NextNumber(ctx, domain.DocTypePurchaseOrder, "ACME", "")
		require.NoError(t, err)
	}

	n, err := repo.NextNumber(ctx, domain.DocTypePayment, "ACME", "")
	require.NoError(t, err)
	require.Equal(t, 1, n, "different document type should start its own counter")

	n, err = repo.NextNumber(ctx, domain.DocTypePurchaseOrder, "OTHER", "")
	require.NoError(t, err)
	require.Equal(t, 1, n, "different company should start its own counter")

	n, err = repo.NextNumber(ctx, domain.DocTypePurchaseOrder, "ACME", "PRJ1")
	require.NoError(t, err)
	require.Equal(t, 1, n, "project-scoped key should start its own counter")

	n, err = repo.NextNumber(ctx, domain.DocTypePurchaseOrder, "ACME", "")
	require.NoError(t, err)
	require.Equal(t, 4, n, "original counter should be untouched by the other keys")
}

func TestNextNumberTxRollbackReleasesNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewDocumentSequenceRepository(db)
	ctx := context.Background()

	tx := db.Begin()
	require.NoError(t, tx.Error)
	n, err := repo.WithTx(tx).NextNumberTx(ctx, domain.DocTypeJournal, "ACME", "")
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.NoError(t, tx.Rollback().Error)

	n, err = repo.NextNumber(ctx, domain.DocTypeJournal, "ACME", "")
	require.NoError(t, err)
	require.Equal(t, 1, n, "rolled back allocation should not consume the number")
}

func TestNextNumberConcurrentAllocationsAreUnique(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewDocumentSequenceRepository(db)
	ctx := context.Background()

	const workers = 8
	const perWorker = 5

	var mu sync.Mutex
	seen := make(map[int]bool, workers*perWorker)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				n, err := repo.NextNumber(ctx, domain.DocTypePurchaseOrder, "ACME", "")
				mu.Lock()
				if err != nil {
					t.Errorf("allocation failed: %v", err)
				} else {
					if seen[n] {
						t.Errorf("number %d allocated twice", n)
					}
					seen[n] = true
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, workers*perWorker)
}
