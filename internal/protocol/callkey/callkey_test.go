package callkey_test

import (
	"bytes"
	"testing"

	"sotto/internal/crypto"
	"sotto/internal/protocol/callkey"
)

func TestDerive_BothSidesAgree(t *testing.T) {
	alice, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	bob, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	ckA, err := callkey.Derive(crypto.SharedKey(alice.Secret, bob.Public))
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	ckB, err := callkey.Derive(crypto.SharedKey(bob.Secret, alice.Public))
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if ckA != ckB {
		t.Fatal("call keys differ across the pair")
	}
}

func TestDerive_NotTheRootKey(t *testing.T) {
	alice, _ := crypto.GenerateKeyPair()
	bob, _ := crypto.GenerateKeyPair()
	shared := crypto.SharedKey(alice.Secret, bob.Public)

	ck, err := callkey.Derive(shared)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if bytes.Equal(ck.Slice(), shared.Slice()) {
		t.Fatal("call key equals the raw shared key; derivation must be one-way and labeled")
	}
}

func TestDerive_Deterministic(t *testing.T) {
	alice, _ := crypto.GenerateKeyPair()
	bob, _ := crypto.GenerateKeyPair()
	shared := crypto.SharedKey(alice.Secret, bob.Public)

	a, _ := callkey.Derive(shared)
	b, _ := callkey.Derive(shared)
	if a != b {
		t.Fatal("derivation not deterministic")
	}
}
