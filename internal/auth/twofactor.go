package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/redis/go-redis/v9"

	"github.com/colloki/console/internal/shared"
)

// TwoFactor manages TOTP secrets for tenants that enforce a second factor.
type TwoFactor struct {
	client    *redis.Client
	issuer    string
	validator *shared.Validator
	now       func() time.Time
}

// NewTwoFactor returns a TwoFactor storing secrets in redis.
func NewTwoFactor(client *redis.Client, issuer string) *TwoFactor {
	if issuer == "" {
		issuer = "Colloki Console"
	}
	return &TwoFactor{client: client, issuer: issuer, validator: shared.NewValidator(), now: time.Now}
}

// Enroll issues a fresh secret for the signed-in user. An existing secret is only
// replaced by a session that has already verified against it.
func (t *TwoFactor) Enroll(ctx context.Context, sess *shared.Session) (Enrollment, error) {
	rec, ok := ReadRecord(sess)
	if !ok {
		return Enrollment{}, shared.ErrUnauthenticated
	}
	if !rec.SecondFactor {
		n, err := t.client.Exists(ctx, t.redisKey(rec)).Result()
		if err != nil {
			return Enrollment{}, err
		}
		if n > 0 {
			return Enrollment{}, shared.ErrConflict("second factor already enrolled")
		}
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      t.issuer,
		AccountName: rec.User.Email,
	})
	if err != nil {
		return Enrollment{}, fmt.Errorf("auth: generate totp: %w", err)
	}
	if err := t.client.Set(ctx, t.redisKey(rec), key.Secret(), 0).Err(); err != nil {
		return Enrollment{}, err
	}
	return Enrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// Verify checks code against the user's secret and marks the session as verified.
func (t *TwoFactor) Verify(ctx context.Context, sess *shared.Session, input VerifyInput) error {
	rec, ok := ReadRecord(sess)
	if !ok {
		return shared.ErrUnauthenticated
	}
	if err := t.validator.Struct(input); err != nil {
		return err
	}
	secret, err := t.client.Get(ctx, t.redisKey(rec)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return shared.ErrValidation("second factor not enrolled")
		}
		return err
	}
	valid, err := totp.ValidateCustom(input.Code, secret, t.now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil || !valid {
		return shared.ErrValidation("invalid verification code")
	}
	rec.SecondFactor = true
	return writeRecord(sess, rec)
}

func (t *TwoFactor) redisKey(rec Record) string {
	return "console:totp:" + rec.TenantID + ":" + rec.User.ID
}
