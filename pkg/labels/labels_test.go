package labels

import (
	"strings"
	"testing"
)

func TestParseMapForm(t *testing.T) {
	data := []byte("names:\n  0: person\n  2: car\n  16: dog\n")
	m, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 3 {
		t.Fatalf("len = %d, want 3", m.Len())
	}
	if name, ok := m.Name(16); !ok || name != "dog" {
		t.Errorf("Name(16) = %q, %v", name, ok)
	}
	if id, ok := m.ID("car"); !ok || id != 2 {
		t.Errorf("ID(car) = %d, %v", id, ok)
	}
	if _, ok := m.Name(1); ok {
		t.Error("Name(1) should miss")
	}
}

func TestParseListForm(t *testing.T) {
	data := []byte("names: [person, bicycle, car]\n")
	m, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if id, ok := m.ID("bicycle"); !ok || id != 1 {
		t.Errorf("ID(bicycle) = %d, %v", id, ok)
	}
	got := m.Names()
	want := []string{"person", "bicycle", "car"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
	}
}

func TestParseMissingNames(t *testing.T) {
	if _, err := Parse([]byte("path: ../datasets/coco\n")); err == nil {
		t.Fatal("expected error for yaml without names")
	}
}

func TestValidate(t *testing.T) {
	m := COCO()
	if err := m.Validate([]string{"person", "dog"}); err != nil {
		t.Errorf("valid classes rejected: %v", err)
	}
	if err := m.Validate(nil); err != nil {
		t.Errorf("nil classes rejected: %v", err)
	}
	err := m.Validate([]string{"Person"})
	if err == nil || !strings.Contains(err.Error(), "did you mean [person]") {
		t.Errorf("case hint missing: %v", err)
	}
	if err := m.Validate([]string{"unicorn"}); err == nil {
		t.Error("unknown class accepted")
	}
}

func TestCOCO(t *testing.T) {
	m := COCO()
	if m.Len() != 80 {
		t.Fatalf("len = %d, want 80", m.Len())
	}
	if name, _ := m.Name(0); name != "person" {
		t.Errorf("Name(0) = %q", name)
	}
	if name, _ := m.Name(79); name != "toothbrush" {
		t.Errorf("Name(79) = %q", name)
	}
	if id, _ := m.ID("dog"); id != 16 {
		t.Errorf("ID(dog) = %d, want 16", id)
	}
}
