package rdcommon

import (
	"errors"
	"testing"
)

func TestNewSpaceBounds(t *testing.T) {
	for _, bits := range []int{0, -1, 32, 40} {
		if _, err := NewSpace(bits); !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("NewSpace(%d) err = %v, want ErrInvalidConfiguration", bits, err)
		}
	}
	s, err := NewSpace(4)
	if err != nil {
		t.Fatal(err)
	}
	if s.Size() != 16 || s.MaxID() != 15 {
		t.Fatalf("space 4 bits: size=%d max=%d", s.Size(), s.MaxID())
	}
}

func TestSpaceCheckID(t *testing.T) {
	s, _ := NewSpace(4)
	if err := s.CheckID(15); err != nil {
		t.Fatalf("CheckID(15) = %v", err)
	}
	if err := s.CheckID(16); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("CheckID(16) err = %v, want ErrOutOfRange", err)
	}
}

func TestFingerTargetWraps(t *testing.T) {
	s, _ := NewSpace(4)
	cases := []struct {
		own  ID
		i    int
		want ID
	}{
		{1, 0, 2},
		{1, 3, 9},
		{15, 0, 0},
		{15, 3, 7},
		{12, 3, 4},
	}
	for _, c := range cases {
		if got := s.FingerTarget(c.own, c.i); got != c.want {
			t.Fatalf("FingerTarget(%d, %d) = %d, want %d", c.own, c.i, got, c.want)
		}
	}
}

func TestHashInSpaceDeterministicAndInRange(t *testing.T) {
	s, _ := NewSpace(8)
	first := HashInSpace("docs/readme.md", s)
	for i := 0; i < 50; i++ {
		got := HashInSpace("docs/readme.md", s)
		if got != first {
			t.Fatalf("hash not deterministic: %d then %d", first, got)
		}
	}
	for _, p := range []string{"a", "b", "some/long/path.bin", ""} {
		if k := HashInSpace(p, s); !s.Contains(k) {
			t.Fatalf("HashInSpace(%q) = %d outside space", p, k)
		}
	}
}
