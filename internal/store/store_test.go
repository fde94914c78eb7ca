package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetGet(t *testing.T) {
	s := New()
	s.Set("foo", []byte("bar"), nil)

	v, ok := s.Get("foo")
	assert.True(t, ok)
	assert.Equal(t, []byte("bar"), v)
}

func TestGetMissing(t *testing.T) {
	s := New()
	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	s := New()
	ttl := 30 * time.Millisecond
	s.Set("k", []byte("v"), &ttl)

	v, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	time.Sleep(60 * time.Millisecond)

	_, ok = s.Get("k")
	assert.False(t, ok)
}

func TestOverwriteClearsOldTTL(t *testing.T) {
	s := New()
	ttl := 10 * time.Millisecond
	s.Set("k", []byte("v1"), &ttl)
	s.Set("k", []byte("v2"), nil)

	time.Sleep(30 * time.Millisecond)

	v, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), v)
}

func TestDel(t *testing.T) {
	s := New()
	s.Set("k", []byte("v"), nil)

	assert.True(t, s.Del("k"))
	_, ok := s.Get("k")
	assert.False(t, ok)
	assert.False(t, s.Del("k"))
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	done := make(chan struct{})

	go func() {
		for i := 0; i < 1000; i++ {
			s.Set("k", []byte("v"), nil)
		}
		close(done)
	}()

	for i := 0; i < 1000; i++ {
		s.Get("k")
	}
	<-done
}
