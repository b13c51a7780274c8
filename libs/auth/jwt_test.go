package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestHS256RoundTrip(t *testing.T) {
	claims := NewClaims("goro", RoleOwner, time.Now(), time.Hour)
	token, err := SignHS256(claims, "test-secret")
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}
	parsed, err := ParseHS256(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseHS256 failed: %v", err)
	}
	if parsed.Subject != "goro" || parsed.Role != RoleOwner {
		t.Fatalf("claims mismatch: got %+v", parsed)
	}
	if _, err := ParseHS256(token, "wrong-secret"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken with wrong secret, got %v", err)
	}
}

func TestParseRejectsExpiredAndForeignTokens(t *testing.T) {
	expired, err := SignHS256(NewClaims("goro", RoleOwner, time.Now().Add(-2*time.Hour), time.Hour), "s")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseHS256(expired, "s"); err == nil {
		t.Fatal("expected expired token to fail")
	}

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: RoleOwner,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := foreign.SignedString([]byte("s"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseHS256(raw, "s"); err == nil {
		t.Fatal("expected foreign issuer to fail")
	}

	if _, err := SignHS256(NewClaims("x", RoleOwner, time.Now(), time.Hour), ""); err == nil {
		t.Fatal("expected empty secret to fail")
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, found := ClaimsFromContext(r.Context())
		if !found || c.Subject != "goro" {
			t.Errorf("claims missing from context")
		}
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireRole("s", RoleOwner)(ok)

	owner, _ := SignHS256(NewClaims("goro", RoleOwner, time.Now(), time.Hour), "s")
	staff, _ := SignHS256(NewClaims("goro", RoleStaff, time.Now(), time.Hour), "s")

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"wrong role", "Bearer " + staff, http.StatusForbidden},
		{"owner", "bearer " + owner, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/owner/bookings", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tc.want {
				t.Fatalf("got %d want %d", rr.Code, tc.want)
			}
		})
	}
}
