package sharedsolution

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordinator/ordinator/internal/entity"
	"github.com/ordinator/ordinator/internal/solution"
)

func TestFabric_LoadIsPointerStableWithoutStore(t *testing.T) {
	f := NewFabric(nil)

	a := f.Load()
	b := f.Load()

	assert.Same(t, a, b, "two consecutive loads with no intervening store must be pointer-equal")
}

func TestFabric_PublishReplacesOnlyOwnSlot(t *testing.T) {
	f := NewFabric(nil)

	tactical := solution.NewTactical()
	f.Publish(func(base *Composite) *Composite { return base.WithTactical(tactical) })

	strategic := solution.NewStrategic()
	strategic.SetScheduled(2100000001, &entity.Period{Year: 2024, StartWeek: 41, EndWeek: 42})
	published := f.Publish(func(base *Composite) *Composite { return base.WithStrategic(strategic) })

	require.Same(t, tactical, published.Tactical, "publishing strategic must carry tactical over by reference")
	require.Same(t, strategic, published.Strategic)
}

func TestFabric_PublishRetriesUnderConcurrentWriters(t *testing.T) {
	f := NewFabric(nil)
	const writers = 16

	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		id := entity.Id(rune('a' + i))
		go func() {
			defer wg.Done()
			f.Publish(func(base *Composite) *Composite {
				return base.WithOperational(id, solution.NewOperational(id))
			})
		}()
	}
	wg.Wait()

	final := f.Load()
	assert.Len(t, final.Operational, writers, "every concurrent publisher's own slot must survive the CAS retries")
}
