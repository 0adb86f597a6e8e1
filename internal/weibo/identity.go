package weibo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/jsiebens/weiboauth/internal/auth"
	"github.com/jsiebens/weiboauth/internal/errors"
	"go.uber.org/zap"
)

// FetchIdentity resolves the uid of the token owner and loads the matching
// users/show profile. Weibo has no endpoint returning both, and the profile
// lookup needs the uid, so the calls run one after the other.
func (p *Provider) FetchIdentity(ctx context.Context, token auth.AccessToken) (*auth.Identity, error) {
	if err := p.config.Validate(); err != nil {
		return nil, err
	}

	uid, err := p.fetchUID(ctx, token)
	if err != nil {
		return nil, err
	}

	profile, err := p.fetchProfile(ctx, token, uid)
	if err != nil {
		return nil, err
	}

	if v, ok := profile[auth.EmailKey]; !ok || v == nil {
		// Weibo only shares email addresses with applications holding the email privilege.
		profile[auth.EmailKey] = fmt.Sprintf("%s@%s", uid, p.config.PlaceholderEmailDomain)
	}

	p.logger.Debug("identity fetched", zap.String("uid", uid))

	return auth.NewIdentity(Name, uid, profile, p.config.UserInfoMapping), nil
}

func (p *Provider) fetchUID(ctx context.Context, token auth.AccessToken) (string, error) {
	const op = "fetch uid"

	body, err := p.getJSON(ctx, token, op, p.config.UIDPath)
	if err != nil {
		return "", err
	}

	uid, err := uidValue(body["uid"])
	if err != nil {
		return "", errors.IdentityFetchError(op, err)
	}

	return uid, nil
}

func (p *Provider) fetchProfile(ctx context.Context, token auth.AccessToken, uid string) (map[string]interface{}, error) {
	const op = "fetch profile"

	u, err := url.Parse(p.config.UserInfoPath)
	if err != nil {
		return nil, errors.ConfigurationError(op, err)
	}
	q := u.Query()
	q.Set("uid", uid)
	u.RawQuery = q.Encode()

	return p.getJSON(ctx, token, op, u.String())
}

func (p *Provider) getJSON(ctx context.Context, token auth.AccessToken, op, path string) (map[string]interface{}, error) {
	resp, err := token.Get(ctx, path)
	if err != nil {
		if errors.KindOf(err) != errors.Unknown {
			return nil, err
		}
		return nil, errors.IdentityFetchError(op, err)
	}

	if !resp.IsSuccess() {
		return nil, errors.IdentityFetchError(op, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, truncate(resp.Body, 256)))
	}

	var result map[string]interface{}
	decoder := json.NewDecoder(bytes.NewReader(resp.Body))
	decoder.UseNumber()
	if err := decoder.Decode(&result); err != nil {
		return nil, errors.IdentityFetchError(op, fmt.Errorf("invalid json response: %w", err))
	}
	if result == nil {
		return nil, errors.IdentityFetchError(op, fmt.Errorf("empty json response"))
	}

	return result, nil
}

func uidValue(v interface{}) (string, error) {
	switch uid := v.(type) {
	case nil:
		return "", fmt.Errorf("response does not contain a uid")
	case string:
		if uid == "" {
			return "", fmt.Errorf("response contains an empty uid")
		}
		return uid, nil
	case json.Number:
		return uid.String(), nil
	default:
		return "", fmt.Errorf("unexpected uid type %T", v)
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
