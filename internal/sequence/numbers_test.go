package sequence

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketNumber_Format(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	first, err := TicketNumber(context.Background(), store, now)
	require.NoError(t, err)
	assert.Equal(t, "TICKET-20250601-00001", first)

	second, err := TicketNumber(context.Background(), store, now)
	require.NoError(t, err)
	assert.Equal(t, "TICKET-20250601-00002", second)
}

func TestTicketNumber_DayBoundaryIsUTC(t *testing.T) {
	store := NewMemoryStore()
	// 23:30 UTC and 00:30 UTC next day land in different sequences.
	late := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)
	early := late.Add(time.Hour)

	a, err := TicketNumber(context.Background(), store, late)
	require.NoError(t, err)
	b, err := TicketNumber(context.Background(), store, early)
	require.NoError(t, err)

	assert.Equal(t, "TICKET-20250601-00001", a)
	assert.Equal(t, "TICKET-20250602-00001", b)
}

func TestRequestNumber_ContinuousAcrossYears(t *testing.T) {
	store := NewMemoryStore()
	decNow := time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)
	janNow := time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC)

	a, err := RequestNumber(context.Background(), store, decNow)
	require.NoError(t, err)
	b, err := RequestNumber(context.Background(), store, janNow)
	require.NoError(t, err)

	// The year in the format advances but the sequence does not reset.
	assert.Equal(t, "CR-2025-00001", a)
	assert.Equal(t, "CR-2026-00002", b)
}

func TestTicketNumber_ConcurrentAllocation(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	const n = 64
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]struct{}, n)
	suffixes := make([]int, 0, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := TicketNumber(context.Background(), store, now)
			if err != nil {
				t.Errorf("allocate: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if _, dup := seen[num]; dup {
				t.Errorf("duplicate number %s", num)
			}
			seen[num] = struct{}{}
			parts := strings.Split(num, "-")
			suffix, err := strconv.Atoi(parts[len(parts)-1])
			if err != nil {
				t.Errorf("suffix parse %s: %v", num, err)
				return
			}
			suffixes = append(suffixes, suffix)
		}()
	}
	wg.Wait()

	require.Len(t, suffixes, n)
	sort.Ints(suffixes)
	for i, suffix := range suffixes {
		assert.Equal(t, i+1, suffix, fmt.Sprintf("suffixes must be gapless starting at 1, got %v", suffixes))
	}
}
