package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New()
	c.Set("url", "body text", time.Minute)

	got, ok := c.Get("url")
	if !ok || got != "body text" {
		t.Errorf("Get = %q, %v; want body text, true", got, ok)
	}
}

func TestGet_Missing(t *testing.T) {
	c := New()
	if _, ok := c.Get("absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestGet_Expired(t *testing.T) {
	c := New()
	c.Set("url", "stale", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get("url"); ok {
		t.Error("expected miss after TTL expiry")
	}
}

func TestSet_EmptyValueCached(t *testing.T) {
	// Failed extractions cache an empty string so the URL is not re-fetched.
	c := New()
	c.Set("url", "", time.Minute)

	got, ok := c.Get("url")
	if !ok || got != "" {
		t.Errorf("empty value must still be a hit, got %q, %v", got, ok)
	}
}
