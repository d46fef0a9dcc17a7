package invariant_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tessellate/vgraph/internal/invariant"
)

func TestPreconditionPass(t *testing.T) {
	invariant.Precondition(true, "this should pass")
	invariant.Precondition(1 == 1, "math works")
}

func TestPreconditionFail(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for false precondition")
		}
		msg := fmt.Sprintf("%v", r)
		if !strings.Contains(msg, "PRECONDITION VIOLATION") {
			t.Errorf("expected PRECONDITION VIOLATION, got: %s", msg)
		}
		if !strings.Contains(msg, "node id must be set") {
			t.Errorf("expected custom message, got: %s", msg)
		}
		if !strings.Contains(msg, "at ") {
			t.Errorf("expected call site context, got: %s", msg)
		}
	}()

	invariant.Precondition(false, "node id must be set")
}

func TestInvariantPass(t *testing.T) {
	invariant.Invariant(3 > 2, "ordering holds")
}

func TestInvariantFail(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for false invariant")
		}
		if !strings.Contains(fmt.Sprintf("%v", r), "INVARIANT VIOLATION") {
			t.Errorf("expected INVARIANT VIOLATION, got: %v", r)
		}
	}()

	invariant.Invariant(1 > 2, "node id must advance")
}

func TestNotNil(t *testing.T) {
	invariant.NotNil(&struct{}{}, "ctx")

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil value")
		}
	}()
	var p *int
	invariant.NotNil(p, "p")
}

func TestPositive(t *testing.T) {
	invariant.Positive(1, "id")

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-positive value")
		}
	}()
	invariant.Positive(0, "id")
}
