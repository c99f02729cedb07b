package recent

import (
	"fmt"
	"sync"
	"testing"
)

func TestAddOrdersMostRecentFirst(t *testing.T) {
	l := New(3)
	l.Add("/a")
	l.Add("/b")
	l.Add("/c")

	want := []string{"/c", "/b", "/a"}
	got := l.Items()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Items() = %v, want %v", got, want)
		}
	}
}

func TestAddDeduplicates(t *testing.T) {
	l := New(3)
	l.Add("/a")
	l.Add("/b")
	l.Add("/a/")

	got := l.Items()
	if len(got) != 2 || got[0] != "/a" || got[1] != "/b" {
		t.Errorf("Items() = %v, want [/a /b]", got)
	}
}

func TestAddEvictsOldest(t *testing.T) {
	l := New(2)
	l.Add("/a")
	l.Add("/b")
	l.Add("/c")

	got := l.Items()
	if len(got) != 2 || got[0] != "/c" || got[1] != "/b" {
		t.Errorf("Items() = %v, want [/c /b]", got)
	}
}

func TestAddIgnoresEmpty(t *testing.T) {
	l := New(0)
	l.Add("")
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0", l.Len())
	}
	if l.capacity != DefaultCapacity {
		t.Errorf("capacity = %d, want %d", l.capacity, DefaultCapacity)
	}
}

func TestItemsIsCopy(t *testing.T) {
	l := New(2)
	l.Add("/a")
	items := l.Items()
	items[0] = "/mutated"

	if l.Items()[0] != "/a" {
		t.Error("Items() must return a copy")
	}
}

func TestConcurrentAdd(t *testing.T) {
	l := New(DefaultCapacity)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Add(fmt.Sprintf("/dir/%d", i%20))
			l.Items()
		}()
	}
	wg.Wait()

	if l.Len() != DefaultCapacity {
		t.Errorf("Len() = %d, want %d", l.Len(), DefaultCapacity)
	}
}
