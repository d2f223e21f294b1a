package common

import (
	"encoding/hex"
	"testing"
)

// ---------- MakeRandHexString ----------

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	n := 16
	s, err := MakeRandHexString(n)
	if err != nil {
		t.Fatalf("MakeRandHexString error: %v", err)
	}
	if len(s) != n*2 {
		t.Fatalf("want length %d, got %d", n*2, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		t.Fatalf("result is not valid hex: %v", err)
	}
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	if err != nil {
		t.Fatalf("MakeRandHexString error: %v", err)
	}
	if s != "" {
		t.Fatalf("want empty string, got %q", s)
	}
}

func TestMakeRandHexString_EntropyHint(t *testing.T) {
	n := 32
	a, err := MakeRandHexString(n)
	if err != nil {
		t.Fatalf("MakeRandHexString error: %v", err)
	}
	b, err := MakeRandHexString(n)
	if err != nil {
		t.Fatalf("MakeRandHexString error: %v", err)
	}
	if a == b {
		t.Logf("warning: two MakeRandHexString(%d) results are identical; extremely unlikely", n)
	}
}

// ---------- GenerateRandByteArray ----------

func TestGenerateRandByteArray(t *testing.T) {
	size := 32
	data1 := GenerateRandByteArray(size)
	data2 := GenerateRandByteArray(size)
	if len(data1) != size || len(data2) != size {
		t.Fatalf("want %d bytes, got %d and %d", size, len(data1), len(data2))
	}
	same := true
	for i := range data1 {
		if data1[i] != data2[i] {
			same = false
			break
		}
	}
	if same {
		t.Logf("warning: two random arrays are identical; extremely unlikely")
	}
}
