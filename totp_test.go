package authgate

import (
	"encoding/base32"
	"strings"
	"testing"
	"time"
)

// RFC 6238 appendix B test vectors.
func TestTOTPReferenceVectors(t *testing.T) {
	sha1Secret := []byte("12345678901234567890")
	sha256Secret := []byte("12345678901234567890123456789012")
	sha512Secret := []byte("1234567890123456789012345678901234567890123456789012345678901234")

	cases := []struct {
		unix      int64
		algorithm string
		secret    []byte
		want      string
	}{
		{59, "SHA1", sha1Secret, "94287082"},
		{1111111109, "SHA1", sha1Secret, "07081804"},
		{1111111111, "SHA1", sha1Secret, "14050471"},
		{1234567890, "SHA1", sha1Secret, "89005924"},
		{2000000000, "SHA1", sha1Secret, "69279037"},
		{20000000000, "SHA1", sha1Secret, "65353130"},
		{59, "SHA256", sha256Secret, "46119246"},
		{1111111109, "SHA256", sha256Secret, "68084774"},
		{59, "SHA512", sha512Secret, "90693936"},
		{1111111109, "SHA512", sha512Secret, "25091201"},
	}

	for _, tc := range cases {
		code, err := hotpCode(tc.secret, tc.unix/30, 8, tc.algorithm)
		if err != nil {
			t.Fatalf("hotpCode(%d, %s) failed: %v", tc.unix, tc.algorithm, err)
		}
		if code != tc.want {
			t.Errorf("t=%d alg=%s: got %s, want %s", tc.unix, tc.algorithm, code, tc.want)
		}
	}
}

func TestTOTPVerifyCodeWindow(t *testing.T) {
	m := newTOTPManager(TOTPConfig{
		Issuer: "authgate-test",
		Digits: 6,
		Period: 30,
		Skew:   1,
	})

	secret := base32.StdEncoding.WithPadding(base32.NoPadding).
		EncodeToString([]byte("12345678901234567890"))
	now := time.Unix(1111111111, 0)

	codeAt := func(at time.Time) string {
		code, err := hotpCode([]byte("12345678901234567890"), at.Unix()/30, 6, "SHA1")
		if err != nil {
			t.Fatalf("hotpCode failed: %v", err)
		}
		return code
	}

	cases := []struct {
		name string
		code string
		want bool
	}{
		{"current step", codeAt(now), true},
		{"previous step", codeAt(now.Add(-30 * time.Second)), true},
		{"next step", codeAt(now.Add(30 * time.Second)), true},
		{"two steps back", codeAt(now.Add(-60 * time.Second)), false},
		{"two steps ahead", codeAt(now.Add(60 * time.Second)), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := m.VerifyCode(secret, tc.code, now)
			if err != nil {
				t.Fatalf("VerifyCode failed: %v", err)
			}
			if ok != tc.want {
				t.Fatalf("got %v, want %v", ok, tc.want)
			}
		})
	}
}

func TestTOTPVerifyCodeMalformed(t *testing.T) {
	m := newTOTPManager(TOTPConfig{
		Issuer: "authgate-test",
		Digits: 6,
		Period: 30,
		Skew:   1,
	})

	secret, err := m.GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret failed: %v", err)
	}

	now := time.Now()
	for _, code := range []string{"", "12345", "1234567", "12ab56", "123 456"} {
		ok, err := m.VerifyCode(secret, code, now)
		if err != nil {
			t.Fatalf("VerifyCode(%q) errored: %v", code, err)
		}
		if ok {
			t.Fatalf("VerifyCode(%q) unexpectedly passed", code)
		}
	}

	// Whitespace padding around an otherwise valid code is accepted.
	valid := totpCodeAt(t, secret, now)
	ok, err := m.VerifyCode(secret, "  "+valid+"  ", now)
	if err != nil || !ok {
		t.Fatalf("padded valid code rejected, ok=%v err=%v", ok, err)
	}
}

func TestTOTPGenerateSecret(t *testing.T) {
	m := newTOTPManager(TOTPConfig{
		Issuer:       "authgate-test",
		Digits:       6,
		Period:       30,
		Skew:         1,
		SecretLength: 20,
	})

	a, err := m.GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret failed: %v", err)
	}
	b, err := m.GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret failed: %v", err)
	}
	if a == b {
		t.Fatal("two generated secrets collided")
	}
	if strings.Contains(a, "=") {
		t.Fatalf("secret must be unpadded base32: %q", a)
	}

	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(a)
	if err != nil {
		t.Fatalf("secret is not valid base32: %v", err)
	}
	if len(raw) != 20 {
		t.Fatalf("expected 20 raw bytes, got %d", len(raw))
	}
}

func TestTOTPProvisionURI(t *testing.T) {
	m := newTOTPManager(TOTPConfig{
		Issuer:    "authgate-test",
		Digits:    6,
		Period:    30,
		Algorithm: "SHA1",
		Skew:      1,
	})

	uri := m.ProvisionURI("JBSWY3DPEHPK3PXP", "alice", "a@x.com")

	if !strings.HasPrefix(uri, "otpauth://totp/") {
		t.Fatalf("unexpected scheme: %q", uri)
	}
	for _, want := range []string{"alice", "a@x.com", "secret=JBSWY3DPEHPK3PXP", "issuer=authgate-test", "digits=6", "period=30", "algorithm=SHA1"} {
		if !strings.Contains(uri, want) {
			t.Errorf("URI missing %q: %s", want, uri)
		}
	}
}
