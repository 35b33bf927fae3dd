package media

import (
	"strings"
	"testing"
)

func TestGenerateSignatureKnownVector(t *testing.T) {
	got := GenerateSignature(42, "fill-100x100", []byte("secret"))
	if got != "tdoyksa1Y6CaCOroCfOoVx3SR2o=" {
		t.Fatalf("unexpected signature %q", got)
	}
	if again := GenerateSignature(42, "fill-100x100", []byte("secret")); again != got {
		t.Fatalf("signature not deterministic: %q vs %q", again, got)
	}
	if !VerifySignature(got, 42, "fill-100x100", []byte("secret")) {
		t.Fatalf("expected generated signature to verify")
	}
}

func TestVerifySignatureRejectsMutations(t *testing.T) {
	key := []byte("secret")
	signature := GenerateSignature(42, "fill-100x100", key)

	for i := 0; i < len(signature); i++ {
		replacement := byte('A')
		if signature[i] == 'A' {
			replacement = 'B'
		}
		mutated := signature[:i] + string(replacement) + signature[i+1:]
		if VerifySignature(mutated, 42, "fill-100x100", key) {
			t.Fatalf("mutation at %d accepted: %q", i, mutated)
		}
	}

	cases := map[string]struct {
		id   int64
		spec string
		key  string
	}{
		"other image": {id: 43, spec: "fill-100x100", key: "secret"},
		"other spec":  {id: 42, spec: "fill-100x101", key: "secret"},
		"other key":   {id: 42, spec: "fill-100x100", key: "secreT"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if VerifySignature(signature, tc.id, tc.spec, []byte(tc.key)) {
				t.Fatalf("expected verification failure")
			}
		})
	}
	if VerifySignature("not base64!", 42, "fill-100x100", key) {
		t.Fatalf("expected garbage to fail")
	}
}

func TestRenditionURL(t *testing.T) {
	image := &Image{ID: 7, File: "original_images/goethe haus.jpg"}
	got := RenditionURL(image, "width-400", []byte("secret"))
	want := "/images/c0PYawJ29GdNNaunviOP78YoEBI=/7/width-400/goethe%20haus.jpg"
	if got != want {
		t.Fatalf("expected %q got %q", want, got)
	}
	if !strings.HasPrefix(got, "/images/") {
		t.Fatalf("unexpected prefix %q", got)
	}
}

func TestValidFilterSpec(t *testing.T) {
	for _, spec := range []string{"fill-100x100", "width-400|jpegquality-40", "original", "max-800x600|format-webp"} {
		if !ValidFilterSpec(spec) {
			t.Fatalf("expected %q valid", spec)
		}
	}
	for _, spec := range []string{"", "fill 100", "../etc", "fill-100x100/"} {
		if ValidFilterSpec(spec) {
			t.Fatalf("expected %q invalid", spec)
		}
	}
}
