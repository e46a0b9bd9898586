package redemption

import (
	"errors"
	"testing"

	"tshirt-orders/internal/domain"
)

func TestPlainCodecRoundTrip(t *testing.T) {
	code := PlainCodec{}.Encode(42, "buyer-key-1")
	if code != "42-buyer-key-1" {
		t.Fatalf("code = %q", code)
	}

	id, key, err := PlainCodec{}.Decode(code)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if id != 42 || key != "buyer-key-1" {
		t.Fatalf("decoded (%d, %q)", id, key)
	}
}

func TestPlainCodecRejectsMalformed(t *testing.T) {
	for _, code := range []string{"", "42", "42-", "-buyer", "abc-buyer", "0-buyer", "-1-buyer"} {
		if _, _, err := (PlainCodec{}).Decode(code); !errors.Is(err, domain.ErrMalformedCode) {
			t.Fatalf("Decode(%q): err = %v, want ErrMalformedCode", code, err)
		}
	}
}

func TestHMACCodecRoundTrip(t *testing.T) {
	codec := NewHMACCodec("topsecret")
	code := codec.Encode(7, "buyer-with-dashes")

	id, key, err := codec.Decode(code)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if id != 7 || key != "buyer-with-dashes" {
		t.Fatalf("decoded (%d, %q)", id, key)
	}
}

func TestHMACCodecRejectsTampering(t *testing.T) {
	codec := NewHMACCodec("topsecret")
	code := codec.Encode(7, "buyer-1")

	// Point the code at a different order, keeping the old tag.
	tampered := "8" + code[1:]
	if _, _, err := codec.Decode(tampered); !errors.Is(err, domain.ErrMalformedCode) {
		t.Fatalf("err = %v, want ErrMalformedCode", err)
	}

	// A plain unsigned code does not pass the signed decoder.
	if _, _, err := codec.Decode("7-buyer-1"); !errors.Is(err, domain.ErrMalformedCode) {
		t.Fatalf("unsigned: err = %v, want ErrMalformedCode", err)
	}
}

func TestHMACCodecDifferentSecretsDisagree(t *testing.T) {
	code := NewHMACCodec("secret-a").Encode(7, "buyer-1")
	if _, _, err := NewHMACCodec("secret-b").Decode(code); !errors.Is(err, domain.ErrMalformedCode) {
		t.Fatalf("err = %v, want ErrMalformedCode", err)
	}
}
