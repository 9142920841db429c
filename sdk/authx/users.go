package authx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/krancour/mentora/sdk/restmachinery"
)

// User represents a Mentora learner.
type User struct {
	// Username uniquely identifies the User.
	Username string `json:"username"`
	// DisplayName is the name shown to other learners. When empty, views fall
	// back to Username.
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Bio         string `json:"bio,omitempty"`
	AvatarIcon  string `json:"avatar_icon,omitempty"`
	// Stats is the User's progress summary, when the API includes it.
	Stats *UserStats `json:"stats,omitempty"`
	// Extra retains any fields the API returned that are not modeled above so
	// that a User survives a round trip through persistence intact.
	Extra map[string]json.RawMessage `json:"-"`
}

var knownUserFields = []string{
	"username",
	"display_name",
	"email",
	"bio",
	"avatar_icon",
	"stats",
}

// MarshalJSON merges Extra fields back in alongside the modeled ones.
func (u User) MarshalJSON() ([]byte, error) {
	type Alias User
	aliasBytes, err := json.Marshal(Alias(u))
	if err != nil || len(u.Extra) == 0 {
		return aliasBytes, err
	}
	fields := map[string]json.RawMessage{}
	if err = json.Unmarshal(aliasBytes, &fields); err != nil {
		return nil, err
	}
	for k, v := range u.Extra {
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}
	return json.Marshal(fields)
}

// UnmarshalJSON populates modeled fields and collects the rest into Extra.
func (u *User) UnmarshalJSON(data []byte) error {
	type Alias User
	alias := Alias{}
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for _, known := range knownUserFields {
		delete(fields, known)
	}
	*u = User(alias)
	if len(fields) > 0 {
		u.Extra = fields
	}
	return nil
}

// Name returns the User's display name, or their username if no display name
// is set.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// UserStats summarizes a User's accumulated progress.
type UserStats struct {
	Level            int     `json:"level"`
	TotalXP          int     `json:"total_xp"`
	StreakDays       int     `json:"streak_days"`
	TotalHours       float64 `json:"total_hours"`
	CompletedCourses int     `json:"completed_courses"`
}

// DailyProgress summarizes a User's progress toward today's goal.
type DailyProgress struct {
	TasksCompleted int `json:"tasks_completed"`
	// Percentage is in the range 0-100 and is deliberately left unrounded.
	Percentage float64 `json:"percentage"`
}

// ProfileUpdate is a partial User record. Empty fields are omitted from the
// request and left unchanged by the API server.
type ProfileUpdate struct {
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Bio         string `json:"bio,omitempty"`
	AvatarIcon  string `json:"avatar_icon,omitempty"`
}

// UsersClient is the specialized client for retrieving and updating the
// current User.
type UsersClient interface {
	// GetMe returns the User the current bearer token belongs to.
	GetMe(context.Context) (User, error)
	GetStats(context.Context) (UserStats, error)
	GetDailyProgress(context.Context) (DailyProgress, error)
	// UpdateProfile applies a partial update and returns the updated User.
	UpdateProfile(context.Context, ProfileUpdate) (User, error)
}

type usersClient struct {
	*restmachinery.BaseClient
}

// NewUsersClient returns a specialized client for retrieving and updating the
// current User.
func NewUsersClient(
	apiAddress string,
	opts *restmachinery.APIClientOptions,
) UsersClient {
	return &usersClient{
		BaseClient: restmachinery.NewBaseClient(apiAddress, opts),
	}
}

func (u *usersClient) GetMe(ctx context.Context) (User, error) {
	user := User{}
	return user, u.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:  http.MethodGet,
			Path:    "api/users/me",
			RespObj: &user,
		},
	)
}

func (u *usersClient) GetStats(ctx context.Context) (UserStats, error) {
	stats := UserStats{}
	return stats, u.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:  http.MethodGet,
			Path:    "api/users/stats",
			RespObj: &stats,
		},
	)
}

func (u *usersClient) GetDailyProgress(
	ctx context.Context,
) (DailyProgress, error) {
	progress := DailyProgress{}
	return progress, u.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:  http.MethodGet,
			Path:    "api/users/daily-progress",
			RespObj: &progress,
		},
	)
}

func (u *usersClient) UpdateProfile(
	ctx context.Context,
	update ProfileUpdate,
) (User, error) {
	user := User{}
	return user, u.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:     http.MethodPut,
			Path:       "api/users/profile",
			ReqBodyObj: update,
			RespObj:    &user,
		},
	)
}
