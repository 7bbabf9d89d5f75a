package history

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestStore_AppendAndRecent(t *testing.T) {
	store := NewStore(10)

	store.Append("s1", RoleUser, "how is my campaign performing")
	store.Append("s1", RoleAssistant, "the campaign is pacing well")
	store.Append("s2", RoleUser, "unrelated session")

	turns := store.Recent("s1", 10)
	if len(turns) != 2 {
		t.Fatalf("Recent() returned %d turns, want 2", len(turns))
	}
	if turns[0].Role != RoleUser || turns[0].Content != "how is my campaign performing" {
		t.Errorf("first turn = %+v", turns[0])
	}
	if turns[1].Role != RoleAssistant {
		t.Errorf("second turn role = %s, want assistant", turns[1].Role)
	}

	if got := store.Len("s2"); got != 1 {
		t.Errorf("Len(s2) = %d, want 1", got)
	}
}

func TestStore_EvictsOldestAtCapacity(t *testing.T) {
	store := NewStore(3)

	for i := 1; i <= 5; i++ {
		store.Append("s1", RoleUser, fmt.Sprintf("message %d", i))
	}

	turns := store.Recent("s1", 10)
	if len(turns) != 3 {
		t.Fatalf("Recent() returned %d turns, want 3", len(turns))
	}
	if turns[0].Content != "message 3" {
		t.Errorf("oldest kept turn = %q, want message 3", turns[0].Content)
	}
	if turns[2].Content != "message 5" {
		t.Errorf("newest turn = %q, want message 5", turns[2].Content)
	}
}

func TestStore_Recent_LimitsCount(t *testing.T) {
	store := NewStore(10)
	for i := 0; i < 6; i++ {
		store.Append("s1", RoleUser, fmt.Sprintf("m%d", i))
	}

	turns := store.Recent("s1", 2)
	if len(turns) != 2 {
		t.Fatalf("Recent(2) returned %d turns", len(turns))
	}
	if turns[0].Content != "m4" || turns[1].Content != "m5" {
		t.Errorf("Recent(2) = [%q, %q], want most recent two", turns[0].Content, turns[1].Content)
	}
}

func TestStore_EmptySessionID(t *testing.T) {
	store := NewStore(5)
	store.Append("", RoleUser, "ignored")

	if got := store.Len(""); got != 0 {
		t.Errorf("Len(\"\") = %d, want 0", got)
	}
	if turns := store.Recent("", 5); turns != nil {
		t.Errorf("Recent(\"\") = %v, want nil", turns)
	}
}

func TestStore_Clear(t *testing.T) {
	store := NewStore(5)
	store.Append("s1", RoleUser, "hello")
	store.Clear("s1")

	if got := store.Len("s1"); got != 0 {
		t.Errorf("Len after Clear = %d, want 0", got)
	}
}

func TestStore_RoutingContext(t *testing.T) {
	t.Run("formats roles", func(t *testing.T) {
		store := NewStore(10)
		store.Append("s1", RoleUser, "what is the budget")
		store.Append("s1", RoleAssistant, "the budget is $60,000")

		ctx := store.RoutingContext("s1", 6)
		want := "User: what is the budget\nAssistant: the budget is $60,000"
		if ctx != want {
			t.Errorf("RoutingContext() = %q, want %q", ctx, want)
		}
	})

	t.Run("empty session", func(t *testing.T) {
		store := NewStore(10)
		if ctx := store.RoutingContext("none", 6); ctx != "" {
			t.Errorf("RoutingContext() = %q, want empty", ctx)
		}
	})

	t.Run("truncates long turns", func(t *testing.T) {
		store := NewStore(10)
		long := strings.Repeat("x", 400)
		store.Append("s1", RoleUser, long)

		ctx := store.RoutingContext("s1", 6)
		if !strings.HasSuffix(ctx, "...") {
			t.Errorf("long turn should be truncated with ellipsis: %q", ctx[len(ctx)-10:])
		}
		// "User: " + 300 runes + "..."
		if len(ctx) != len("User: ")+300+3 {
			t.Errorf("truncated context length = %d", len(ctx))
		}
	})

	t.Run("boundary content is not truncated", func(t *testing.T) {
		store := NewStore(10)
		exact := strings.Repeat("y", 300)
		store.Append("s1", RoleUser, exact)

		ctx := store.RoutingContext("s1", 6)
		if strings.HasSuffix(ctx, "...") {
			t.Error("content at exactly 300 runes should not be truncated")
		}
	})
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore(50)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sessionID := fmt.Sprintf("s%d", n%3)
			for j := 0; j < 20; j++ {
				store.Append(sessionID, RoleUser, "msg")
				store.Recent(sessionID, 5)
				store.RoutingContext(sessionID, 6)
			}
		}(i)
	}
	wg.Wait()
}
