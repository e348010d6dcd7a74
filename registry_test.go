package dotcluster

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Lifecycle(t *testing.T) {
	r, err := NewRegistry(DefaultConfig())
	require.NoError(t, err)

	a := r.Create()
	b := r.Create()
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, r.Len())

	cz, err := r.Get(a)
	require.NoError(t, err)
	slot := cz.AddDot(0, 0, 1)

	require.NoError(t, r.Delete(a))
	assert.False(t, slot.Valid(), "deleting an instance destroys its dots")
	_, err = r.Get(a)
	assert.ErrorIs(t, err, ErrUnknownInstance)
	assert.ErrorIs(t, r.Delete(a), ErrUnknownInstance)

	assert.Equal(t, []uuid.UUID{b}, r.IDs())
	r.DeleteAll()
	assert.Zero(t, r.Len())
	_, err = r.Get(b)
	assert.ErrorIs(t, err, ErrUnknownInstance)
}

func TestRegistry_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fudge = -1
	_, err := NewRegistry(cfg)
	assert.ErrorIs(t, err, ErrInvalidFudge)
}

func TestRegistry_SetRadiiAppliesToNewInstances(t *testing.T) {
	r, err := NewRegistry(DefaultConfig())
	require.NoError(t, err)
	early, err := r.Get(r.Create())
	require.NoError(t, err)

	require.NoError(t, r.SetRadii(5, 20, 100, 500, 2500))
	want := [NumLevels]float64{5, 20, 100, 500, 2500}
	assert.Equal(t, want, r.Config().Radii)
	assert.Equal(t, DefaultConfig().Radii, early.Config().Radii, "live instances keep their radii")

	late, err := r.Get(r.Create())
	require.NoError(t, err)
	assert.Equal(t, want, late.Config().Radii, "new instances start from the registry radii")

	assert.ErrorIs(t, r.SetRadii(5, 4, 100, 500, 2500), ErrRadiiOrder)
	assert.ErrorIs(t, r.SetRadii(2, 20, 100, 500, 2500), ErrInvalidFudge, "dot radius below the fudge")
	assert.Equal(t, want, r.Config().Radii, "rejected radii must not apply")
}

func TestRegistry_SetFudgeAppliesToNewInstances(t *testing.T) {
	r, err := NewRegistry(DefaultConfig())
	require.NoError(t, err)
	cz, err := r.Get(r.Create())
	require.NoError(t, err)
	require.NoError(t, cz.SetFudge(1, true))
	require.NoError(t, cz.SetRadii(2, 50, 300, 1500, 10000))

	// Only the registry's dot radius of 10 bounds the value.
	require.NoError(t, r.SetFudge(5, false))
	assert.Equal(t, 5.0, r.Config().Fudge)
	assert.False(t, r.Config().FudgeEnabled)
	assert.Equal(t, 1.0, cz.Config().Fudge)
	assert.True(t, cz.Config().FudgeEnabled)

	assert.ErrorIs(t, r.SetFudge(10, true), ErrInvalidFudge)
	assert.Equal(t, 5.0, r.Config().Fudge)

	late, err := r.Get(r.Create())
	require.NoError(t, err)
	assert.Equal(t, 5.0, late.Config().Fudge)
	assert.False(t, late.Config().FudgeEnabled)
}

func TestRegistry_SettingsDoNotTouchBusyInstances(t *testing.T) {
	r, err := NewRegistry(DefaultConfig())
	require.NoError(t, err)
	cz, err := r.Get(r.Create())
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		cz.AddDot(float64(i*7), 0, uint64(i))
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_, err := cz.BuildLevel(Level1, false)
			assert.NoError(t, err)
		}
	}()
	for i := 0; i < 50; i++ {
		d := float64(4 + i%5)
		assert.NoError(t, r.SetRadii(d, 50, 300, 1500, 10000))
		assert.NoError(t, r.SetFudge(0.5, i%2 == 0))
	}
	wg.Wait()

	assert.Equal(t, DefaultConfig(), cz.Config())
}

func TestRegistry_ConcurrentCreate(t *testing.T) {
	r, err := NewRegistry(DefaultConfig())
	require.NoError(t, err)

	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cz, err := r.Get(r.Create())
			if !assert.NoError(t, err) {
				return
			}
			// Each goroutine owns its instance exclusively.
			cz.AddDot(float64(i), 0, uint64(i))
			cz.AddDot(float64(i)+1, 0)
			_, err = cz.BuildLevel(Level1, true)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, n, r.Len())
	assert.Len(t, r.IDs(), n)
}
