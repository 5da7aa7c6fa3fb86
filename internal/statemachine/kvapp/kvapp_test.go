package kvapp

import "testing"

func TestApplySetThenGet(t *testing.T) {
	app := New()

	if _, err := app.Apply(NewCommand(OpSet, "k", "v")); err != nil {
		t.Fatalf("Apply(SET) error: %v", err)
	}

	v, ok := app.Get("k")
	if !ok || v != "v" {
		t.Fatalf("Get(k) = %v, %v; want v, true", v, ok)
	}
}

func TestApplyDeleteRemovesKey(t *testing.T) {
	app := New()
	if _, err := app.Apply(NewCommand(OpSet, "k", "v")); err != nil {
		t.Fatalf("Apply(SET) error: %v", err)
	}
	if _, err := app.Apply(NewCommand(OpDelete, "k", nil)); err != nil {
		t.Fatalf("Apply(DELETE) error: %v", err)
	}

	if _, ok := app.Get("k"); ok {
		t.Fatalf("expected k to be gone after delete")
	}
}

func TestApplyGetReturnsReplyWithFoundFlag(t *testing.T) {
	app := New()
	if _, err := app.Apply(NewCommand(OpSet, "k", "v")); err != nil {
		t.Fatalf("Apply(SET) error: %v", err)
	}

	reply, err := app.Apply(NewCommand(OpGet, "k", nil))
	if err != nil {
		t.Fatalf("Apply(GET) error: %v", err)
	}
	r, ok := reply.(Reply)
	if !ok {
		t.Fatalf("Apply(GET) returned %T, want Reply", reply)
	}
	if !r.Found || r.Value != "v" {
		t.Fatalf("Apply(GET) = %+v, want Found=true Value=v", r)
	}

	missing, err := app.Apply(NewCommand(OpGet, "missing", nil))
	if err != nil {
		t.Fatalf("Apply(GET missing) error: %v", err)
	}
	if missing.(Reply).Found {
		t.Fatalf("expected Found=false for missing key")
	}
}

func TestApplyEchoesRequestID(t *testing.T) {
	app := New()
	cmd := NewCommand(OpSet, "k", "v")
	if cmd.RequestID == "" {
		t.Fatal("NewCommand did not assign a RequestID")
	}

	reply, err := app.Apply(cmd)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if reply.(Reply).RequestID != cmd.RequestID {
		t.Fatalf("Reply.RequestID = %q, want %q", reply.(Reply).RequestID, cmd.RequestID)
	}
}

func TestApplyRejectsWrongCommandType(t *testing.T) {
	app := New()
	if _, err := app.Apply("not a command"); err == nil {
		t.Fatal("expected error for non-Command input")
	}
}

func TestApplyRejectsUnknownOp(t *testing.T) {
	app := New()
	if _, err := app.Apply(Command{Op: "BOGUS", Key: "k"}); err == nil {
		t.Fatal("expected error for unknown op")
	}
}
