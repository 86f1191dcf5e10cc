package goldcache

import "testing"

func TestGetSet(t *testing.T) {
	c, err := New[float32](1000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if _, ok := c.Get(1, 2); ok {
		t.Fatal("expected a miss on an empty cache")
	}

	c.Set(1, 2, 3.5)
	c.Wait()

	got, ok := c.Get(1, 2)
	if !ok {
		t.Fatal("expected a hit after Set")
	}
	if got != 3.5 {
		t.Errorf("expected 3.5, got %v", got)
	}
}

func TestKeyOrderMatters(t *testing.T) {
	c, err := New[float32](1000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	c.Set(1, 2, 10)
	c.Set(2, 1, 20)
	c.Wait()

	v1, ok1 := c.Get(1, 2)
	v2, ok2 := c.Get(2, 1)
	if !ok1 || !ok2 {
		t.Fatal("expected both entries to be present")
	}
	if v1 == v2 {
		t.Errorf("expected distinct values for swapped ids, got %v and %v", v1, v2)
	}
}
