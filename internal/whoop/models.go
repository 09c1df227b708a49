package whoop

import "time"

// TokenPayload is the token endpoint response body, shared by the
// authorization-code exchange and refresh grants.
type TokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope,omitempty"`
}

// ScoreStateScored marks a recovery record whose derived metrics, including
// HRV, have finished computing. Other states mean "not yet computed" or
// "unscorable".
const ScoreStateScored = "SCORED"

// RecoveryScore holds the subset of the recovery score payload used here.
// HRVRMSSDMilli is a pointer so an absent value survives decoding.
type RecoveryScore struct {
	HRVRMSSDMilli *float64 `json:"hrv_rmssd_milli"`
}

// RecoveryRecord is one entry of the paginated recovery listing.
type RecoveryRecord struct {
	CycleID    int64          `json:"cycle_id"`
	SleepID    string         `json:"sleep_id,omitempty"`
	UserID     int64          `json:"user_id,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at,omitempty"`
	ScoreState string         `json:"score_state"`
	Score      *RecoveryScore `json:"score,omitempty"`
}

// RecoveryPage is one page of the recovery listing. An empty NextToken
// means the listing is exhausted.
type RecoveryPage struct {
	Records   []RecoveryRecord `json:"records"`
	NextToken string           `json:"next_token,omitempty"`
}
