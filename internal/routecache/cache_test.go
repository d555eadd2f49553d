package routecache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kektech/cardbot/internal/models"
)

func TestCache_GetSet(t *testing.T) {
	c := New(time.Minute, 10)
	key := Key(models.SearchScope{RoomID: "room1"}, "what is freedomkek")

	if _, ok := c.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}
	want := &models.RouteResult{Query: "what is freedomkek"}
	c.Set(key, want)
	got, ok := c.Get(key)
	if !ok || got != want {
		t.Errorf("Get = (%v, %v), want cached result", got, ok)
	}
}

func TestCache_ScopesAreIndependent(t *testing.T) {
	c := New(time.Minute, 10)
	a := Key(models.SearchScope{RoomID: "a"}, "q")
	b := Key(models.SearchScope{RoomID: "b"}, "q")
	c.Set(a, &models.RouteResult{Query: "from-a"})
	if _, ok := c.Get(b); ok {
		t.Error("scope b must not see scope a's entry")
	}
}

func TestCache_Bounded(t *testing.T) {
	c := New(time.Minute, 5)
	for i := 0; i < 20; i++ {
		c.Set(fmt.Sprintf("k%d", i), &models.RouteResult{})
	}
	if c.Len() > 5 {
		t.Errorf("cache grew to %d entries, bound is 5", c.Len())
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New(20*time.Millisecond, 10)
	c.Set("k", &models.RouteResult{})
	time.Sleep(50 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("entry should have expired")
	}
}

func TestCache_ConcurrentReadInsert(t *testing.T) {
	c := New(time.Minute, 1000)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("g%d-i%d", g, i%20)
				c.Set(key, &models.RouteResult{})
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()
}
