package sqlite

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/bundlegate/internal/storage"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// Используем in-memory database для тестов
	s, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
	}

	return s, cleanup
}

func TestBundleStorage_CheckOrCreate_FirstContact(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	// Первый контакт: fail-open, приложение разрешено
	allowed, err := s.CheckOrCreate(ctx, "com.example.app", 1000)
	require.NoError(t, err)
	assert.True(t, allowed)

	// Ровно одна строка с allow_execution = true
	bundle, err := s.Get(ctx, "com.example.app")
	require.NoError(t, err)
	assert.True(t, bundle.AllowExecution)
	assert.Equal(t, int64(1000), bundle.LastAccessTime)

	var count int
	err = s.DB().QueryRow(`SELECT COUNT(*) FROM bundles WHERE bundle_id = ?`, "com.example.app").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBundleStorage_CheckOrCreate_RepeatKeepsFlag(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.CheckOrCreate(ctx, "com.example.app", 1000)
	require.NoError(t, err)

	require.NoError(t, s.SetExecution(ctx, "com.example.app", false, 1001))

	// Повторные проверки не меняют флаг, двигается только last_access_time
	for i, now := range []int64{2000, 3000, 4000} {
		allowed, err := s.CheckOrCreate(ctx, "com.example.app", now)
		require.NoError(t, err, "call %d", i)
		assert.False(t, allowed, "call %d", i)

		bundle, err := s.Get(ctx, "com.example.app")
		require.NoError(t, err)
		assert.Equal(t, now, bundle.LastAccessTime, "call %d", i)
	}
}

func TestBundleStorage_CheckOrCreate_ConcurrentFirstContact(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	const n = 20

	var wg sync.WaitGroup
	verdicts := make([]bool, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			verdicts[i], errs[i] = s.CheckOrCreate(ctx, "com.example.race", int64(1000+i))
		}(i)
	}
	wg.Wait()

	// Все вызовы успешны и разрешены, строка ровно одна
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i], "call %d", i)
		assert.True(t, verdicts[i], "call %d", i)
	}

	var count int
	err := s.DB().QueryRow(`SELECT COUNT(*) FROM bundles WHERE bundle_id = ?`, "com.example.race").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBundleStorage_SetExecution(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	// Блокировка и обратное разрешение существующего приложения
	_, err := s.CheckOrCreate(ctx, "com.example.app", 1000)
	require.NoError(t, err)

	require.NoError(t, s.SetExecution(ctx, "com.example.app", false, 1001))
	allowed, err := s.CheckOrCreate(ctx, "com.example.app", 1002)
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, s.SetExecution(ctx, "com.example.app", true, 1003))
	allowed, err = s.CheckOrCreate(ctx, "com.example.app", 1004)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestBundleStorage_SetExecution_MaterializesMissingRow(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	// Приложение никогда не отмечалось через gate
	require.NoError(t, s.SetExecution(ctx, "com.example.unseen", false, 500))

	bundle, err := s.Get(ctx, "com.example.unseen")
	require.NoError(t, err)
	assert.False(t, bundle.AllowExecution)
	assert.Equal(t, int64(500), bundle.LastAccessTime)
}

func TestBundleStorage_Remove(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.CheckOrCreate(ctx, "com.example.app", 1000)
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, "com.example.app"))

	_, err = s.Get(ctx, "com.example.app")
	assert.ErrorIs(t, err, storage.ErrBundleNotFound)

	// Удаление несуществующего приложения не ошибка
	require.NoError(t, s.Remove(ctx, "com.example.missing"))
}

func TestBundleStorage_List(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	// 25 приложений с возрастающим временем последней проверки
	for i := 0; i < 25; i++ {
		_, err := s.CheckOrCreate(ctx, fmt.Sprintf("com.example.app%02d", i), int64(1000+i))
		require.NoError(t, err)
	}

	count, page, err := s.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 25, count)
	require.Len(t, page, 10)

	// Первая страница: самые свежие last_access_time в убывающем порядке
	assert.Equal(t, "com.example.app24", page[0].BundleID)
	assert.Equal(t, "com.example.app15", page[9].BundleID)
	for i := 1; i < len(page); i++ {
		assert.GreaterOrEqual(t, page[i-1].LastAccessTime, page[i].LastAccessTime)
	}

	// Последняя страница короче, count не зависит от offset
	count, page, err = s.List(ctx, 10, 20)
	require.NoError(t, err)
	assert.Equal(t, 25, count)
	assert.Len(t, page, 5)
}

func TestBundleStorage_List_Empty(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	count, page, err := s.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, page)
}

func TestBundleStorage_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.Get(ctx, "com.example.missing")
	assert.ErrorIs(t, err, storage.ErrBundleNotFound)
}

func TestBundleStorage_Search(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	for i, id := range []string{"com.foo.a", "com.bar", "foo.baz"} {
		_, err := s.CheckOrCreate(ctx, id, int64(1000+i))
		require.NoError(t, err)
	}

	results, err := s.Search(ctx, "foo", 50)
	require.NoError(t, err)

	found := make([]string, 0, len(results))
	for _, b := range results {
		found = append(found, b.BundleID)
	}
	assert.ElementsMatch(t, []string{"com.foo.a", "foo.baz"}, found)
}

func TestBundleStorage_Search_CaseSensitive(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.CheckOrCreate(ctx, "com.Foo.app", 1000)
	require.NoError(t, err)

	// Поиск строго чувствителен к регистру
	results, err := s.Search(ctx, "foo", 50)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = s.Search(ctx, "Foo", 50)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "com.Foo.app", results[0].BundleID)
}

func TestBundleStorage_Search_Limit(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	for i := 0; i < 10; i++ {
		_, err := s.CheckOrCreate(ctx, fmt.Sprintf("com.example.app%d", i), int64(1000+i))
		require.NoError(t, err)
	}

	results, err := s.Search(ctx, "com.example", 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}
