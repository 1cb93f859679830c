package source

import (
	"context"
	"strings"

	"github.com/google/go-github/v62/github"
	"github.com/huangsam/contriboard/schema"
)

// UserProfile is the profile of one account plus whether GitHub marks it as a bot.
type UserProfile struct {
	Profile schema.Profile
	IsBot   bool
}

// FetchProfile reads the public profile of login.
func (c *Client) FetchProfile(ctx context.Context, login string) (UserProfile, error) {
	res := call(ctx, c, func(ctx context.Context, gh *github.Client) (*github.User, *github.Response, error) {
		return gh.Users.Get(ctx, login)
	})
	if res.Kind != ResultOK {
		return UserProfile{}, &FetchError{Kind: res.Kind, Repository: login, Phase: "profile", ResetAt: res.ResetAt, Err: res.Err}
	}
	u := res.Value
	return UserProfile{
		Profile: schema.Profile{
			GitHubID:  u.GetID(),
			Name:      strings.TrimSpace(u.GetName()),
			Email:     u.GetEmail(),
			AvatarURL: u.GetAvatarURL(),
			Bio:       strings.TrimSpace(u.GetBio()),
			Company:   u.GetCompany(),
			Location:  u.GetLocation(),
			Blog:      u.GetBlog(),
			Twitter:   u.GetTwitterUsername(),
			FetchedAt: c.clock.Now(),
		},
		IsBot: strings.EqualFold(u.GetType(), "Bot"),
	}, nil
}
