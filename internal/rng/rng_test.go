package rng

import "testing"

func TestUint31Range(t *testing.T) {
	s := New(1)
	for i := 0; i < 1000; i++ {
		if v := s.Uint31(); v >= 1<<31 {
			t.Fatalf("Uint31() = %d, out of range", v)
		}
	}
}

func TestUint48Range(t *testing.T) {
	s := New(2)
	for i := 0; i < 1000; i++ {
		if v := s.Uint48(); v >= 1<<48 {
			t.Fatalf("Uint48() = %d, out of range", v)
		}
	}
}

func TestIndependentStreams(t *testing.T) {
	a := New(10)
	b := New(11)

	same := true
	for i := 0; i < 8; i++ {
		if a.Uint48() != b.Uint48() {
			same = false
			break
		}
	}
	if same {
		t.Fatal("two different stream ids produced identical sequences")
	}
}

func TestFillNonTrivial(t *testing.T) {
	s := New(3)
	buf := make([]byte, 37) // exercise the non-multiple-of-8 tail path
	s.Fill(buf)

	allZero := true
	for _, b := range buf {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		t.Fatal("Fill left buffer all zero")
	}
}
