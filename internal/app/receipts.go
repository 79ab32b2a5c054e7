package app

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

// ErrInvalidReceipt reports a receipt token that fails verification.
var ErrInvalidReceipt = errors.New("invalid receipt")

// ReceiptService issues and verifies signed win receipts. A receipt binds
// the user to a verified outcome so other services can accept the win
// without replaying the journal themselves.
type ReceiptService struct {
	secret string
	issuer string
	ttl    time.Duration
}

func NewReceiptService(secret, issuer string, ttl time.Duration) *ReceiptService {
	return &ReceiptService{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
	}
}

// Receipt is the verified content of a receipt token.
type Receipt struct {
	ID        string
	UserID    string
	Seed      int64
	Score     int
	Moves     int
	ExpiresAt time.Time
}

// Issue signs a receipt for a verified won game.
func (s *ReceiptService) Issue(userID string, res ReplayResult) (string, error) {
	if s == nil {
		return "", fmt.Errorf("receipt service is nil")
	}
	if userID == "" {
		return "", fmt.Errorf("user is required")
	}
	if s.secret == "" || s.issuer == "" {
		return "", fmt.Errorf("receipt config is incomplete")
	}
	if !res.Won {
		return "", fmt.Errorf("receipts are only issued for won games")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   s.issuer,
		"sub":   userID,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
		"jti":   uuid.NewString(),
		"seed":  strconv.FormatInt(res.Seed, 10),
		"score": res.Score,
		"moves": res.Moves,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify checks the signature, expiry and issuer of a receipt token and
// returns its content.
func (s *ReceiptService) Verify(tokenString string) (Receipt, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", ErrInvalidReceipt, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Receipt{}, ErrInvalidReceipt
	}

	if issuer, _ := claims["iss"].(string); issuer != s.issuer {
		return Receipt{}, fmt.Errorf("%w: unexpected issuer", ErrInvalidReceipt)
	}
	userID, _ := claims["sub"].(string)
	id, _ := claims["jti"].(string)
	if userID == "" || id == "" {
		return Receipt{}, fmt.Errorf("%w: missing subject or id", ErrInvalidReceipt)
	}
	seedText, _ := claims["seed"].(string)
	seed, err := strconv.ParseInt(seedText, 10, 64)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: bad seed claim", ErrInvalidReceipt)
	}

	// Numeric claims come back as float64 after JSON decoding.
	score, _ := claims["score"].(float64)
	moves, _ := claims["moves"].(float64)
	expiry, _ := claims["exp"].(float64)

	return Receipt{
		ID:        id,
		UserID:    userID,
		Seed:      seed,
		Score:     int(score),
		Moves:     int(moves),
		ExpiresAt: time.Unix(int64(expiry), 0),
	}, nil
}
