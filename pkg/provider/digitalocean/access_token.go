package digitalocean

import "golang.org/x/oauth2"

// tokenSource hands godo's oauth2 client the static API token read from the
// configured env var
type tokenSource struct {
	AccessToken string
}

// Token implements oauth2.TokenSource. The token never expires.
func (t *tokenSource) Token() (*oauth2.Token, error) {
	return &oauth2.Token{
		AccessToken: t.AccessToken,
	}, nil
}
