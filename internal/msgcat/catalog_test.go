package msgcat

import (
    "errors"
    "os"
    "path/filepath"
    "strings"
    "testing"
)

func TestEmbeddedRender(t *testing.T) {
    c, err := New("")
    if err != nil {
        t.Fatalf("New: %v", err)
    }
    got, err := c.Render("checkers.errors.no_session", map[string]any{"Prefix": "!ck"})
    if err != nil {
        t.Fatalf("Render: %v", err)
    }
    if got != "No game in progress. Start one with `!ck start`." {
        t.Fatalf("unexpected text: %q", got)
    }
}

func TestRenderTrimsOptionalBlocks(t *testing.T) {
    c, err := New("")
    if err != nil {
        t.Fatalf("New: %v", err)
    }
    type data struct {
        PlayerMove, BotMove string
    }
    got, err := c.Render("checkers.move.played", data{PlayerMove: "A6-B5"})
    if err != nil {
        t.Fatalf("Render: %v", err)
    }
    if got != "You: A6-B5" {
        t.Fatalf("unexpected text: %q", got)
    }
    got, err = c.Render("checkers.move.played", data{PlayerMove: "A6-B5", BotMove: "B3-A4"})
    if err != nil {
        t.Fatalf("Render: %v", err)
    }
    if got != "You: A6-B5\nBot: B3-A4" {
        t.Fatalf("unexpected text: %q", got)
    }
}

func TestRenderErrors(t *testing.T) {
    c, err := New("")
    if err != nil {
        t.Fatalf("New: %v", err)
    }
    if _, err := c.Render("checkers.nope", nil); !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
    if _, err := c.Render("checkers.errors.no_session", map[string]any{}); err == nil {
        t.Fatalf("expected missing key error")
    }
    if !c.Has("checkers.help") || c.Has("checkers.header") {
        t.Fatalf("Has mismatch")
    }
}

func TestOverrideDir(t *testing.T) {
    dir := t.TempDir()
    write := func(name, body string) {
        if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
            t.Fatalf("write %s: %v", name, err)
        }
    }
    write("a.yaml", "checkers:\n  errors:\n    room: \"닫힌 방입니다.\"\n")
    write("notes.txt", "ignored")

    c, err := New(dir)
    if err != nil {
        t.Fatalf("New: %v", err)
    }
    got, err := c.Render("checkers.errors.room", nil)
    if err != nil || got != "닫힌 방입니다." {
        t.Fatalf("override not applied: %q %v", got, err)
    }

    write("b.yml", "checkers:\n  errors:\n    room: \"again\"\n")
    if _, err := New(dir); err == nil || !strings.Contains(err.Error(), "duplicate override key") {
        t.Fatalf("expected duplicate key error, got %v", err)
    }
}

func TestRejectsNonStringLeaves(t *testing.T) {
    if _, err := parseYAMLToFlat([]byte("checkers:\n  limit: 3\n")); err == nil {
        t.Fatalf("expected error for integer leaf")
    }
}
