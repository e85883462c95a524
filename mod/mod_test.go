package mod_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sacrt/psac/mod"
)

type fakeReader struct {
	modified int
}

func (r *fakeReader) SetModified() { r.modified++ }

func TestWriteNotifiesSubscribedReaders(t *testing.T) {
	m := mod.New[int]()
	r := &fakeReader{}
	m.AddReader(1, r)

	m.Write(5)
	assert.Equal(t, 1, r.modified)
	assert.Equal(t, 5, m.Value())
}

func TestNoOpWriteShortCircuit(t *testing.T) {
	m := mod.New[int]()
	r := &fakeReader{}

	m.Write(5)
	m.AddReader(1, r)
	m.Write(5) // same value: must not notify
	assert.Equal(t, 0, r.modified)

	m.Write(6) // different value: must notify
	assert.Equal(t, 1, r.modified)
}

func TestFirstWriteAlwaysNotifiesEvenWithEqualZeroValue(t *testing.T) {
	m := mod.New[int]()
	r := &fakeReader{}
	m.AddReader(1, r)

	m.Write(0) // zero value equals the unwritten default, but this is the first write
	assert.Equal(t, 1, r.modified)
}

func TestRemoveReaderStopsNotifications(t *testing.T) {
	m := mod.New[int]()
	r := &fakeReader{}
	m.AddReader(1, r)
	m.RemoveReader(1, r)

	m.Write(1)
	assert.Equal(t, 0, r.modified)
	m.AssertNoReaders()
}

func TestMultipleReadersAllNotified(t *testing.T) {
	m := mod.New[int]()
	readers := make([]*fakeReader, 8)
	for i := range readers {
		readers[i] = &fakeReader{}
		m.AddReader(uint64(i+1), readers[i])
	}

	m.Write(42)
	for _, r := range readers {
		require.Equal(t, 1, r.modified)
	}
}

func TestEqualityFallbackAlwaysNotify(t *testing.T) {
	m := mod.NewWithEquality[int](func(a, b int) bool { return false })
	r := &fakeReader{}
	m.Write(1)
	m.AddReader(1, r)
	m.Write(1) // equal value, but equality fn always reports "different"
	assert.Equal(t, 1, r.modified)
}

func TestModArrayAssertsEachElement(t *testing.T) {
	arr := mod.NewArray[int](4)
	require.Equal(t, 4, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		arr.At(i).Write(i)
	}
	arr.AssertNoReaders()
}
