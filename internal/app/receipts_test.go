package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

func wonResult() ReplayResult {
	return ReplayResult{Seed: -4242, Score: 480, Moves: 131, Won: true}
}

func TestReceiptIssueAndVerify(t *testing.T) {
	svc := NewReceiptService("test-secret", "klondike-test", time.Hour)

	tokenString, err := svc.Issue("user-123", wonResult())
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	receipt, err := svc.Verify(tokenString)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if receipt.UserID != "user-123" {
		t.Errorf("UserID = %s, want user-123", receipt.UserID)
	}
	if receipt.Seed != -4242 {
		t.Errorf("Seed = %d, want -4242", receipt.Seed)
	}
	if receipt.Score != 480 || receipt.Moves != 131 {
		t.Errorf("outcome = (%d, %d), want (480, 131)", receipt.Score, receipt.Moves)
	}
	if receipt.ID == "" {
		t.Error("receipt has no id")
	}
	if !receipt.ExpiresAt.After(time.Now()) {
		t.Errorf("ExpiresAt = %v, want in the future", receipt.ExpiresAt)
	}
}

func TestReceiptClaims(t *testing.T) {
	secret := "test-secret"
	svc := NewReceiptService(secret, "klondike-test", time.Hour)

	tokenString, err := svc.Issue("user-123", wonResult())
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	claims := parseReceiptClaims(t, tokenString, secret)
	if got := stringClaim(t, claims, "iss"); got != "klondike-test" {
		t.Errorf("iss = %s, want klondike-test", got)
	}
	if got := stringClaim(t, claims, "sub"); got != "user-123" {
		t.Errorf("sub = %s, want user-123", got)
	}
	if got := stringClaim(t, claims, "seed"); got != "-4242" {
		t.Errorf("seed = %s, want -4242", got)
	}
}

func TestReceiptIDsAreUnique(t *testing.T) {
	svc := NewReceiptService("test-secret", "klondike-test", time.Hour)

	first, err := svc.Issue("user-123", wonResult())
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	second, err := svc.Issue("user-123", wonResult())
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	a, err := svc.Verify(first)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	b, err := svc.Verify(second)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if a.ID == b.ID {
		t.Errorf("two receipts share id %s", a.ID)
	}
}

func TestReceiptIssueRejections(t *testing.T) {
	cases := []struct {
		name   string
		svc    *ReceiptService
		userID string
		result ReplayResult
	}{
		{"missing user", NewReceiptService("secret", "issuer", time.Hour), "", wonResult()},
		{"missing secret", NewReceiptService("", "issuer", time.Hour), "user-123", wonResult()},
		{"missing issuer", NewReceiptService("secret", "", time.Hour), "user-123", wonResult()},
		{"game not won", NewReceiptService("secret", "issuer", time.Hour), "user-123", ReplayResult{Score: 80}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.svc.Issue(tc.userID, tc.result); err == nil {
				t.Error("Issue() succeeded, want error")
			}
		})
	}
}

func TestReceiptVerifyRejections(t *testing.T) {
	svc := NewReceiptService("test-secret", "klondike-test", time.Hour)

	valid, err := svc.Issue("user-123", wonResult())
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	expired, err := NewReceiptService("test-secret", "klondike-test", -time.Minute).Issue("user-123", wonResult())
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	otherAlg := jwt.NewWithClaims(jwt.SigningMethodHS384, jwt.MapClaims{
		"iss": "klondike-test",
		"sub": "user-123",
		"jti": "fixed",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	otherAlgToken, err := otherAlg.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign HS384 token: %v", err)
	}

	cases := []struct {
		name  string
		svc   *ReceiptService
		token string
	}{
		{"wrong secret", NewReceiptService("other-secret", "klondike-test", time.Hour), valid},
		{"wrong issuer", NewReceiptService("test-secret", "other-issuer", time.Hour), valid},
		{"expired", svc, expired},
		{"wrong signing method", svc, otherAlgToken},
		{"tampered payload", svc, tamper(valid)},
		{"garbage", svc, "not-a-token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.svc.Verify(tc.token)
			if err == nil {
				t.Fatal("Verify() succeeded, want error")
			}
			if !errors.Is(err, ErrInvalidReceipt) {
				t.Errorf("error = %v, want ErrInvalidReceipt", err)
			}
		})
	}
}

// tamper flips a character inside the payload segment.
func tamper(tokenString string) string {
	parts := strings.Split(tokenString, ".")
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	parts[1] = string(payload)
	return strings.Join(parts, ".")
}

func parseReceiptClaims(t *testing.T, tokenString, secret string) jwt.MapClaims {
	t.Helper()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse receipt: %v", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("claims have type %T", token.Claims)
	}
	return claims
}

func stringClaim(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()

	value, ok := claims[key].(string)
	if !ok {
		t.Fatalf("claim %s has type %T", key, claims[key])
	}
	return value
}
