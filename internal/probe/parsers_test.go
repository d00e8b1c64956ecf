package probe

import (
	"bufio"
	"errors"
	"strings"
	"testing"
)

func TestParseSpotlight(t *testing.T) {
	t.Parallel()

	out := []byte(`_kMDItemDisplayNameWithExtensions = "beach.jpg"
kMDItemContentType                = "public.jpeg"
kMDItemKeywords                   = (
    "beach",
    "2019"
)
kMDItemFSSize                     = 204800
kMDItemTitle                      = "a = b"
not an attribute line
`)

	attrs, err := ParseSpotlight(out)
	if err != nil {
		t.Fatalf("ParseSpotlight failed: %v", err)
	}

	want := map[string]string{
		"_kMDItemDisplayNameWithExtensions": `"beach.jpg"`,
		"kMDItemContentType":                `"public.jpeg"`,
		"kMDItemKeywords":                   `("beach", "2019")`,
		"kMDItemFSSize":                     "204800",
		"kMDItemTitle":                      `"a = b"`,
	}

	if len(attrs) != len(want) {
		t.Fatalf("Expected %d attributes, got %d: %v", len(want), len(attrs), attrs)
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attrs[%q] = %q, want %q", k, attrs[k], v)
		}
	}
}

func TestParseSpotlightEmpty(t *testing.T) {
	t.Parallel()

	got, err := ParseSpotlight(nil)
	if err != nil || len(got) != 0 {
		t.Errorf("Expected empty map, got %v (err %v)", got, err)
	}
}

func TestParseSpotlightUnterminatedList(t *testing.T) {
	t.Parallel()

	attrs, err := ParseSpotlight([]byte("kMDItemAuthors = (\n    \"someone\"\n"))
	if err != nil {
		t.Fatalf("ParseSpotlight failed: %v", err)
	}
	if attrs["kMDItemAuthors"] != `("someone")` {
		t.Errorf("Expected partial list to be kept, got %q", attrs["kMDItemAuthors"])
	}
}

func TestParseSpotlightOverlongLine(t *testing.T) {
	t.Parallel()

	out := "kMDItemContentType = \"public.jpeg\"\n" +
		"kMDItemComment = \"" + strings.Repeat("x", 2*1024*1024) + "\"\n" +
		"kMDItemTitle = \"after\"\n"

	attrs, err := ParseSpotlight([]byte(out))
	if !errors.Is(err, bufio.ErrTooLong) {
		t.Fatalf("Expected bufio.ErrTooLong, got %v", err)
	}
	if attrs != nil {
		t.Errorf("Expected no partial attributes, got %d", len(attrs))
	}
}

func TestParseXattr(t *testing.T) {
	t.Parallel()

	if got := ParseXattr([]byte("  \n")); len(got) != 0 {
		t.Errorf("Expected empty map for blank output, got %v", got)
	}

	dump := "com.apple.metadata:kMDItemWhereFroms: bplist00\n"
	got := ParseXattr([]byte(dump))
	if got[XattrKey] != dump {
		t.Errorf("ParseXattr() = %v, want raw dump under %q", got, XattrKey)
	}
}

func TestParseFFProbe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: `{"streams":[],"format":{"format_name":"mov,mp4"}}`},
		{name: "empty object", input: `{}`},
		{name: "invalid json", input: `{"streams":`, wantErr: true},
		{name: "null", input: `null`, wantErr: true},
		{name: "empty output", input: ``, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFFProbe([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFFProbe() error = %v", err)
			}
			if got == nil {
				t.Error("Expected non-nil map")
			}
		})
	}
}
