package model

// Identity is the authenticated caller attached to a request by the auth
// gate after token verification. It is the only input to ownership checks.
type Identity struct {
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
}
