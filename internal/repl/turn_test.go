package repl

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"

	"ember/internal/errors"
	"ember/internal/frontend"
	"ember/internal/jit"
)

func newController(out *bytes.Buffer, playground bool) *Controller {
	return NewController(jit.NewSession(out), playground, "")
}

func execute(t *testing.T, c *Controller, input string) *TurnResult {
	t.Helper()
	result, err := c.ExecuteLine(input)
	if err != nil {
		t.Fatalf("ExecuteLine(%q) failed: %v", input, err)
	}
	return result
}

func TestTurnCapturesExpressionResult(t *testing.T) {
	var out bytes.Buffer
	c := newController(&out, false)

	result := execute(t, c, "2 + 2")
	if !result.HasValue {
		t.Fatal("no value captured")
	}
	if result.Value != int64(4) {
		t.Errorf("value: got %v, want 4", result.Value)
	}
	if result.Result != "__res_1" {
		t.Errorf("result global: got %q, want __res_1", result.Result)
	}
	if result.ResultType != frontend.TypeInt {
		t.Errorf("result type: got %s, want int", result.ResultType)
	}
}

func TestTurnGlobalsPersistAcrossTurns(t *testing.T) {
	var out bytes.Buffer
	c := newController(&out, false)

	execute(t, c, "let x = 10")
	result := execute(t, c, "x * 2")
	if result.Value != int64(20) {
		t.Errorf("got %v, want 20", result.Value)
	}
}

func TestTurnResultGlobalsAreReusable(t *testing.T) {
	var out bytes.Buffer
	c := newController(&out, false)

	execute(t, c, "2 + 2")
	result := execute(t, c, "__res_1 + 1")
	if result.Value != int64(5) {
		t.Errorf("got %v, want 5", result.Value)
	}
}

func TestTurnFunctionsPersistAcrossTurns(t *testing.T) {
	var out bytes.Buffer
	c := newController(&out, false)

	execute(t, c, "fn double(n: int): int { return n * 2 }")
	result := execute(t, c, "double(21)")
	if result.Value != int64(42) {
		t.Errorf("got %v, want 42", result.Value)
	}
}

func TestTurnRedefinitionRepointsExistingCallers(t *testing.T) {
	var out bytes.Buffer
	c := newController(&out, false)

	execute(t, c, "fn f(): int { return 1 }")
	execute(t, c, "fn caller(): int { return f() }")
	if result := execute(t, c, "caller()"); result.Value != int64(1) {
		t.Fatalf("before redefinition: got %v, want 1", result.Value)
	}

	execute(t, c, "fn f(): int { return 2 }")
	if result := execute(t, c, "caller()"); result.Value != int64(2) {
		t.Errorf("after redefinition: got %v, want 2", result.Value)
	}
}

func TestTurnOverloadsCoexist(t *testing.T) {
	var out bytes.Buffer
	c := newController(&out, false)

	execute(t, c, "fn id(x: int): int { return x }")
	execute(t, c, "fn id(x: string): string { return x }")

	if result := execute(t, c, "id(7)"); result.Value != int64(7) {
		t.Errorf("int overload: got %v, want 7", result.Value)
	}
	if result := execute(t, c, `id("seven")`); result.Value != "seven" {
		t.Errorf("string overload: got %v, want seven", result.Value)
	}
}

func TestTurnRejectsKindMismatch(t *testing.T) {
	var out bytes.Buffer
	c := newController(&out, false)

	execute(t, c, "let x = 1")
	result := execute(t, c, "fn x(): int { return 1 }")
	if len(result.Skipped) != 1 {
		t.Fatalf("got %d skipped, want 1", len(result.Skipped))
	}
	if !stderrors.Is(result.Skipped[0], errors.NewRedeclarationError("")) {
		t.Errorf("got %v, want a RedeclarationError", result.Skipped[0])
	}
	if !strings.Contains(result.Skipped[0].Error(), "Invalid redeclaration of x") {
		t.Errorf("message: got %q", result.Skipped[0].Error())
	}
}

func TestTurnSkipContinuesRestOfTurn(t *testing.T) {
	var out bytes.Buffer
	c := newController(&out, false)

	execute(t, c, "let x = 1")
	// The variable redeclaration is skipped; the function in the same
	// input still links.
	result := execute(t, c, "let x = 2\nfn g(): int { return 5 }")
	if len(result.Skipped) != 1 {
		t.Fatalf("got %d skipped, want 1", len(result.Skipped))
	}
	if got := execute(t, c, "g()"); got.Value != int64(5) {
		t.Errorf("g(): got %v, want 5", got.Value)
	}
	if got := execute(t, c, "x"); got.Value != int64(1) {
		t.Errorf("x: got %v, want 1", got.Value)
	}
}

func TestTurnLetOverFunctionLeavesFunctionCallable(t *testing.T) {
	var out bytes.Buffer
	c := newController(&out, false)

	execute(t, c, "fn f(): int { return 1 }")

	// The variable is rejected and its initializer dropped with it; the
	// prior function must survive untouched.
	result := execute(t, c, "let f = 5")
	if len(result.Skipped) != 1 {
		t.Fatalf("got %d skipped, want 1", len(result.Skipped))
	}

	if got := execute(t, c, "f()"); got.Value != int64(1) {
		t.Errorf("f(): got %v, want 1", got.Value)
	}
}

func TestTurnRejectedLetKeepsOldValue(t *testing.T) {
	var out bytes.Buffer
	c := newController(&out, false)

	execute(t, c, "let x = 1")
	result := execute(t, c, "let x = 2")
	if len(result.Skipped) != 1 {
		t.Fatalf("got %d skipped, want 1", len(result.Skipped))
	}

	// Skipping the declaration also skips its initializer.
	if got := execute(t, c, "x"); got.Value != int64(1) {
		t.Errorf("x: got %v, want 1", got.Value)
	}
}

func TestTurnPlaygroundRejectsRedefinition(t *testing.T) {
	var out bytes.Buffer
	c := newController(&out, true)

	execute(t, c, "fn f(): int { return 1 }")
	result := execute(t, c, "fn f(): int { return 2 }")
	if len(result.Skipped) != 1 {
		t.Fatalf("got %d skipped, want 1", len(result.Skipped))
	}
	if got := execute(t, c, "f()"); got.Value != int64(1) {
		t.Errorf("f(): got %v, want 1", got.Value)
	}
}

func TestTurnCheckErrorAbortsBeforeLinking(t *testing.T) {
	var out bytes.Buffer
	c := newController(&out, false)

	_, err := c.ExecuteLine("let x = nope")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !stderrors.Is(err, errors.NewReferenceError("", "", 0, 0)) {
		t.Errorf("got %v, want a ReferenceError", err)
	}

	// The failed turn consumed its number but committed nothing.
	if _, ok := c.Session().GlobalValue("x"); ok {
		t.Error("x was linked despite the failed turn")
	}
	if result := execute(t, c, "let x = 3"); result == nil {
		t.Fatal("recovery turn failed")
	}
}

func TestTurnCounterAdvancesEveryTurn(t *testing.T) {
	var out bytes.Buffer
	c := newController(&out, false)

	if c.Turn() != 1 {
		t.Fatalf("initial turn: got %d, want 1", c.Turn())
	}
	c.ExecuteLine("bad syntax here !")
	if c.Turn() != 2 {
		t.Errorf("after failed turn: got %d, want 2", c.Turn())
	}
	execute(t, c, "1 + 1")
	if c.Turn() != 3 {
		t.Errorf("after good turn: got %d, want 3", c.Turn())
	}
}

func TestTurnLogPrintsToSessionOutput(t *testing.T) {
	var out bytes.Buffer
	c := newController(&out, false)

	execute(t, c, `log("hello")`)
	if out.String() != "hello\n" {
		t.Errorf("got %q, want %q", out.String(), "hello\n")
	}
}

func TestTurnWhileLoopAtTopLevel(t *testing.T) {
	var out bytes.Buffer
	c := newController(&out, false)

	execute(t, c, "let total = 0")
	execute(t, c, "let i = 1")
	execute(t, c, "while i <= 5 { total = total + i\ni = i + 1 }")
	result := execute(t, c, "total")
	if result.Value != int64(15) {
		t.Errorf("got %v, want 15", result.Value)
	}
}
