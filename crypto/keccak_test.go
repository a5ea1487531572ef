package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

func TestKeccak256EmptyInput(t *testing.T) {
	got := hex.EncodeToString(Keccak256([]byte{}))
	want := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	if got != want {
		t.Errorf("Keccak256(empty) = %s, want %s", got, want)
	}
}

func TestKeccak256KnownVector(t *testing.T) {
	got := hex.EncodeToString(Keccak256([]byte("hello")))
	want := "1c8aff950685c2ed4bc3174f3472287b56d9517b9c948127319a09a7a36deac8"
	if got != want {
		t.Errorf("Keccak256(hello) = %s, want %s", got, want)
	}
}

func TestKeccak256MultipleInputs(t *testing.T) {
	// Writing inputs separately must equal hashing the concatenation.
	combined := Keccak256([]byte("helloworld"))
	separate := Keccak256([]byte("hello"), []byte("world"))
	if !bytes.Equal(combined, separate) {
		t.Errorf("Keccak256 multi-input mismatch: %x != %x", combined, separate)
	}
}

func TestKeccak256MatchesGoEthereum(t *testing.T) {
	// Cross-check against go-ethereum's independent implementation.
	inputs := [][]byte{
		{},
		{0x01},
		{1, 2, 3},
		[]byte("the quick brown fox"),
		bytes.Repeat([]byte{0xab}, 1000),
	}
	for _, in := range inputs {
		got := Keccak256(in)
		want := ethcrypto.Keccak256(in)
		if !bytes.Equal(got, want) {
			t.Errorf("Keccak256(%x) = %x, go-ethereum computes %x", in, got, want)
		}
	}
}

func TestKeccak256HashLength(t *testing.T) {
	h := Keccak256Hash([]byte("test"))
	if len(h) != 32 {
		t.Errorf("Keccak256Hash length = %d, want 32", len(h))
	}
}
