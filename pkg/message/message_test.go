package message

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTurnConstructors(t *testing.T) {
	testCases := []struct {
		turn     Turn
		expected Role
	}{
		{NewSystemTurn("be sarcastic"), RoleSystem},
		{NewUserTurn("ana said: hi"), RoleUser},
		{NewAssistantTurn("hello"), RoleAssistant},
		{NewImageTurn("what is this?", "https://cdn.example.com/a.png"), RoleUser},
	}

	for _, tc := range testCases {
		if tc.turn.Role != tc.expected {
			t.Errorf("Expected role %s, got %s", tc.expected, tc.turn.Role)
		}
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleSystem, RoleUser, RoleAssistant} {
		if !r.Valid() {
			t.Errorf("Expected %q to be valid", r)
		}
	}
	if Role("tool").Valid() {
		t.Error("Expected unknown role to be invalid")
	}
}

func TestTurnJSONOmitsEmptyImage(t *testing.T) {
	data, err := json.Marshal(NewAssistantTurn("hello"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if got := string(data); got != `{"role":"assistant","content":"hello"}` {
		t.Errorf("Unexpected JSON: %s", got)
	}
}

func TestTruncatedString(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := NewUserTurn(long).TruncatedString()
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Expected truncated output, got %q", got)
	}
	// Cuts on a character boundary
	accented := NewAssistantTurn(strings.Repeat("ñ", 250)).TruncatedString()
	if !utf8.ValidString(accented) {
		t.Errorf("Truncated output is not valid UTF-8: %q", accented)
	}
	if want := "🤖 " + strings.Repeat("ñ", 200) + "..."; accented != want {
		t.Errorf("Expected 200 characters kept, got %d bytes", len(accented))
	}
	if !strings.Contains(NewSystemTurn("x").TruncatedString(), "system") {
		t.Error("Expected system turns to show their role")
	}
}

func TestCloneTurnsIsIndependent(t *testing.T) {
	orig := []Turn{NewUserTurn("one"), NewAssistantTurn("two")}
	clone := CloneTurns(orig)
	clone[0] = NewUserTurn("changed")
	if orig[0].Content != "one" {
		t.Error("Mutating the clone changed the original")
	}
}
