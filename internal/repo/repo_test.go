package repo

import (
	"testing"

	"github.com/shaiso/camunda-demo/internal/domain"
)

func TestNullKey(t *testing.T) {
	if nullKey(0) != nil {
		t.Error("zero key should map to NULL")
	}
	if v := nullKey(domain.Key(2251799813685249)); v == nil || *v != 2251799813685249 {
		t.Errorf("unexpected value %v", v)
	}
}

func TestNullString(t *testing.T) {
	if nullString("") != nil {
		t.Error("empty string should map to NULL")
	}
	if v := nullString("COMPLETED"); v == nil || *v != "COMPLETED" {
		t.Errorf("unexpected value %v", v)
	}
}
