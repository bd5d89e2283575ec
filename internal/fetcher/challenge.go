package fetcher

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/IshaanNene/wishpick/internal/types"
)

// Challenge names the anti-bot page a response turned out to be.
type Challenge string

const (
	ChallengeDouban    Challenge = "douban"
	ChallengeTencent   Challenge = "tencent_captcha"
	ChallengeReCaptcha Challenge = "recaptcha"
	ChallengeHCaptcha  Challenge = "hcaptcha"
	ChallengeTurnstile Challenge = "turnstile"
)

// challengeHost serves Douban's "unusual traffic" interstitial.
const challengeHost = "sec.douban.com"

var challengeMarkers = []struct {
	marker    []byte
	challenge Challenge
}{
	{[]byte("sec.douban.com/b?"), ChallengeDouban},
	{[]byte("TencentCaptcha"), ChallengeTencent},
	{[]byte("turing.captcha.qcloud.com"), ChallengeTencent},
	{[]byte("g-recaptcha"), ChallengeReCaptcha},
	{[]byte("h-captcha"), ChallengeHCaptcha},
	{[]byte("cf-turnstile"), ChallengeTurnstile},
}

// DetectChallenge reports whether resp is a challenge page rather than content.
// A redirect onto the challenge host wins over body markers.
func DetectChallenge(resp *types.Response) (Challenge, bool) {
	if resp == nil {
		return "", false
	}
	if u, err := url.Parse(resp.FinalURL); err == nil && strings.EqualFold(u.Hostname(), challengeHost) {
		return ChallengeDouban, true
	}
	for _, m := range challengeMarkers {
		if bytes.Contains(resp.Body, m.marker) {
			return m.challenge, true
		}
	}
	return "", false
}
