package signing

import "net/url"

// Wallet callbacks are not uniform: some carry the correlation id inside the
// decoded payload, others only as a query parameter on the callback URL.
// Recovery tries a fixed, declared list of named strategies in order and
// takes the first non-empty match.
type correlationSource struct {
	name    string
	extract func(resp *Response, query url.Values) string
}

var correlationSources = []correlationSource{
	{
		name: "payload challenge_id",
		extract: func(resp *Response, _ url.Values) string {
			if resp == nil {
				return ""
			}
			if resp.ChallengeID != "" {
				return resp.ChallengeID
			}
			if resp.Challenge != nil {
				return resp.Challenge.ChallengeID
			}
			return ""
		},
	},
	{
		name: "requestId query parameter",
		extract: func(_ *Response, query url.Values) string {
			return query.Get("requestId")
		},
	},
	{
		name: "id query parameter",
		extract: func(_ *Response, query url.Values) string {
			return query.Get("id")
		},
	},
}

// ResolveCorrelationID recovers the correlation id linking a wallet response
// back to its originating request.
func ResolveCorrelationID(resp *Response, query url.Values) (string, bool) {
	for _, src := range correlationSources {
		if id := src.extract(resp, query); id != "" {
			return id, true
		}
	}
	return "", false
}
