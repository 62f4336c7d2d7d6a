package smolnet

import "context"

// Token is an OAuth2 access token. Attach it to a context with Use and every
// request dispatched with that context carries it as its Authorization header.
type Token struct {
	AccessToken string `json:"access_token"`
	Type        string `json:"token_type"`
	Expires     int    `json:"expires_in"`
}

type tokenValue int

type withToken struct {
	context.Context
	token *Token
}

func (w *withToken) Value(v any) any {
	if _, ok := v.(tokenValue); ok {
		return w.token
	}

	return w.Context.Value(v)
}

func (t *Token) Use(ctx context.Context) context.Context {
	return &withToken{ctx, t}
}

func (t *Token) authorization() string {
	typ := t.Type
	if typ == "" || typ == "bearer" {
		typ = "Bearer"
	}
	return typ + " " + t.AccessToken
}

func tokenFrom(ctx context.Context) *Token {
	if t, ok := ctx.Value(tokenValue(0)).(*Token); ok && t != nil {
		return t
	}
	return nil
}
