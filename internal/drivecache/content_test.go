package drivecache

import "testing"

func TestContentCache_PutAndGet(t *testing.T) {
	c := NewContentCache(1 << 20)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get returned ok for missing entry")
	}

	c.Put("doc1", "<html>hello</html>")
	content, ok := c.Get("doc1")
	if !ok {
		t.Fatal("Get returned not ok after Put")
	}
	if content != "<html>hello</html>" {
		t.Errorf("content = %q", content)
	}
}

func TestContentCache_EvictsOldestFirst(t *testing.T) {
	c := NewContentCache(10)

	c.Put("A", "aaaaaa") // 6 bytes
	c.Put("B", "bbbbbb") // 6 bytes, exceeds budget, A must go

	if _, ok := c.Get("A"); ok {
		t.Error("A should have been evicted")
	}
	if _, ok := c.Get("B"); !ok {
		t.Error("B should still be cached")
	}
	size, _, count := c.Stats()
	if size != 6 || count != 1 {
		t.Errorf("size=%d count=%d, want 6 and 1", size, count)
	}
}

func TestContentCache_BudgetHolds(t *testing.T) {
	c := NewContentCache(20)

	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		c.Put(id, "xxxxxxx") // 7 bytes each
	}

	size, max, _ := c.Stats()
	if size > max {
		t.Errorf("size %d exceeds budget %d", size, max)
	}
	// Only the two newest fit under 20 bytes.
	if _, ok := c.Get("e"); !ok {
		t.Error("e should be cached")
	}
	if _, ok := c.Get("f"); !ok {
		t.Error("f should be cached")
	}
	if _, ok := c.Get("d"); ok {
		t.Error("d should have been evicted")
	}
}

func TestContentCache_OversizedItem(t *testing.T) {
	c := NewContentCache(10)

	c.Put("small", "abc")
	c.Put("huge", "0123456789abcdef") // 16 bytes, larger than the whole budget

	// The oversized item empties the cache but is still inserted.
	if _, ok := c.Get("small"); ok {
		t.Error("small should have been evicted")
	}
	content, ok := c.Get("huge")
	if !ok || content != "0123456789abcdef" {
		t.Errorf("huge not cached: ok=%v content=%q", ok, content)
	}
	size, _, count := c.Stats()
	if size != 16 || count != 1 {
		t.Errorf("size=%d count=%d, want 16 and 1", size, count)
	}
}

func TestContentCache_OverwriteSameKey(t *testing.T) {
	c := NewContentCache(100)

	c.Put("doc", "first")
	c.Put("doc", "second version")

	content, _ := c.Get("doc")
	if content != "second version" {
		t.Errorf("content = %q", content)
	}
	size, _, count := c.Stats()
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if size != int64(len("second version")) {
		t.Errorf("size = %d, want %d", size, len("second version"))
	}
}

func TestContentCache_Clear(t *testing.T) {
	c := NewContentCache(100)

	c.Put("a", "aaa")
	c.Put("b", "bbb")
	c.Clear()

	size, _, count := c.Stats()
	if size != 0 || count != 0 {
		t.Errorf("after Clear: size=%d count=%d", size, count)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("entry survived Clear")
	}

	// Cache must remain usable after Clear.
	c.Put("c", "ccc")
	if _, ok := c.Get("c"); !ok {
		t.Error("Put after Clear failed")
	}
}
