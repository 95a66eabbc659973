package domain

import "testing"

// FuzzParsePersonID checks that parsing arbitrary input never panics and
// never returns both a usable ID and an error.
func FuzzParsePersonID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		parsed, err := ParsePersonID(input)
		if err != nil && !parsed.IsZero() {
			t.Errorf("ParsePersonID(%q) returned both an ID and an error", input)
		}
		if err == nil {
			roundtrip, err2 := ParsePersonID(parsed.String())
			if err2 != nil || roundtrip != parsed {
				t.Errorf("ParsePersonID(%q) does not roundtrip", input)
			}
		}
	})
}

// FuzzParseSource checks the closed enumeration boundary.
func FuzzParseSource(f *testing.F) {
	f.Add("assemblee")
	f.Add("senat")
	f.Add("manual")
	f.Add("")
	f.Add("ASSEMBLEE")
	f.Add("assemblee ")

	f.Fuzz(func(t *testing.T, input string) {
		src, err := ParseSource(input)
		if err == nil && !src.IsValid() {
			t.Errorf("ParseSource(%q) accepted an invalid source", input)
		}
		if err == nil && string(src) != input {
			t.Errorf("ParseSource(%q) mutated the value to %q", input, src)
		}
	})
}
