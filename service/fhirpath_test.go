package service

import "testing"

func TestInvariantChecker_ValidExpression(t *testing.T) {
	c := NewInvariantChecker()
	if err := c.Check("name.exists()"); err != nil {
		t.Errorf("Check(name.exists()) = %v; want nil", err)
	}
}

func TestInvariantChecker_InvalidExpression(t *testing.T) {
	c := NewInvariantChecker()
	if err := c.Check("name.exists((("); err == nil {
		t.Error("unbalanced expression should fail to compile")
	}
}

func TestInvariantChecker_EmptyExpression(t *testing.T) {
	c := NewInvariantChecker()
	if err := c.Check(""); err != nil {
		t.Errorf("empty expression should be a no-op, got %v", err)
	}
	if c.CacheSize() != 0 {
		t.Errorf("empty expression should not be cached, size = %d", c.CacheSize())
	}
}

func TestInvariantChecker_CachesResults(t *testing.T) {
	c := NewInvariantChecker()
	first := c.Check("value.empty()")
	second := c.Check("value.empty()")
	if c.CacheSize() != 1 {
		t.Errorf("CacheSize() = %d; want 1", c.CacheSize())
	}
	if (first == nil) != (second == nil) {
		t.Error("cached result should match the first result")
	}
}

func TestLiteral_IsEmpty(t *testing.T) {
	if !(Literal{}).IsEmpty() {
		t.Error("zero literal should be empty")
	}
	if (Literal{Text: "x"}).IsEmpty() {
		t.Error("literal with text should not be empty")
	}
	if (Literal{Merged: true}).IsEmpty() {
		t.Error("merged literal is not an empty value")
	}
}
