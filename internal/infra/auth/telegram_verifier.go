package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"fireworks/config"
	"fireworks/internal/domain/entity"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/domain/service"
)

// telegramVerifier checks Telegram Login Widget payloads.
// See https://core.telegram.org/widgets/login#checking-authorization.
type telegramVerifier struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewTelegramVerifier is the constructor for telegramVerifier.
func NewTelegramVerifier(cfg *config.Config) service.TelegramAuthVerifier {
	var token string
	if cfg.Telegram != nil {
		token = cfg.Telegram.Token
	}

	var maxAge time.Duration
	if cfg.Auth != nil {
		maxAge = cfg.Auth.TelegramAuthMaxAge
	}

	secret := sha256.Sum256([]byte(token))

	return &telegramVerifier{
		secret: secret[:],
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Verify validates the hash and freshness of the payload and extracts the profile.
func (v *telegramVerifier) Verify(fields map[string]string) (*entity.TelegramProfile, error) {
	hash, ok := fields["hash"]
	if !ok || hash == "" {
		return nil, domainerrors.ErrTelegramAuthInvalid.WrapMessage("missing hash")
	}

	expected := v.sign(fields)
	got, err := hex.DecodeString(hash)
	if err != nil || !hmac.Equal(expected, got) {
		return nil, domainerrors.ErrTelegramAuthInvalid.WrapMessage("hash mismatch")
	}

	authDate, err := strconv.ParseInt(fields["auth_date"], 10, 64)
	if err != nil {
		return nil, domainerrors.ErrTelegramAuthInvalid.WrapMessage("invalid auth_date")
	}
	if v.maxAge > 0 && v.now().Sub(time.Unix(authDate, 0)) > v.maxAge {
		return nil, domainerrors.ErrTelegramAuthInvalid.WrapMessage("payload expired")
	}

	telegramID, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil {
		return nil, domainerrors.ErrTelegramAuthInvalid.WrapMessage("invalid id")
	}

	return &entity.TelegramProfile{
		TelegramID: telegramID,
		Username:   fields["username"],
		FirstName:  fields["first_name"],
		LastName:   fields["last_name"],
	}, nil
}

// sign computes HMAC-SHA256 over the sorted "key=value" lines, excluding hash.
func (v *telegramVerifier) sign(fields map[string]string) []byte {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		if key == "hash" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key+"="+fields[key])
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(strings.Join(lines, "\n")))

	return mac.Sum(nil)
}
