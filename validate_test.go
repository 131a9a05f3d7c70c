package authgate

import "testing"

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"a@x.com",
		"user.name+tag@example.co.uk",
		"x@y.io",
	}
	for _, email := range valid {
		if !isValidEmail(email) {
			t.Errorf("isValidEmail(%q) = false, want true", email)
		}
	}

	invalid := []string{
		"",
		"a",
		"@x.com",
		"a@",
		"a@x",
		"a@.com",
		"a@x.com.",
		"a b@x.com",
		"a@@x.com",
		"a@x@y.com",
	}
	for _, email := range invalid {
		if isValidEmail(email) {
			t.Errorf("isValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsNumericString(t *testing.T) {
	if !isNumericString("123456") {
		t.Error("expected 123456 to be numeric")
	}
	for _, s := range []string{"", "12a456", " 12345", "12345 "} {
		if isNumericString(s) {
			t.Errorf("isNumericString(%q) = true, want false", s)
		}
	}
}
