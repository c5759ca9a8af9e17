package bech32

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/iov-one/timevault/errors"
)

func TestBech32EncodeDecode(t *testing.T) {
	// bech32  -e -h tiov 746573742d7061796c6f6164
	const enc = `tiov1w3jhxapdwpshjmr0v9jqymqq4y`

	want, err := hex.DecodeString("746573742d7061796c6f6164")
	if err != nil {
		t.Fatal(err)
	}

	hrp, payload, err := Decode(enc)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(want, payload) {
		t.Logf("want %d", want)
		t.Logf("got  %d", payload)
		t.Fatal("invalid decode")
	}

	raw, err := Encode(hrp, payload)
	if err != nil {
		t.Fatalf("cannot encode: %s", err)
	}

	if string(raw) != enc {
		t.Fatalf("invalid encoding: %q", raw)
	}
}

func TestDecodeWithPrefix(t *testing.T) {
	payload := []byte("vault-payload")
	raw, err := Encode("tvault", payload)
	if err != nil {
		t.Fatalf("cannot encode: %s", err)
	}

	got, err := DecodeWithPrefix(string(raw), "tvault")
	if err != nil {
		t.Fatalf("cannot decode: %s", err)
	}
	if !bytes.Equal(payload, got) {
		t.Fatalf("want %q, got %q", payload, got)
	}

	if _, err := DecodeWithPrefix(string(raw), "tiov"); !errors.ErrInput.Is(err) {
		t.Fatalf("want input error, got %+v", err)
	}
}
