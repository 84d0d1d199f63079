/*
Package authsdk provides a client SDK for the miniboss authorization server,
together with the wire types and OAuth2 errors the server itself renders.

# Overview

miniboss issues opaque bearer tokens through the OAuth2 authorization code
flow. A relying party redirects the user to the authorize endpoint, the
first-party login UI collects credentials, and the relying party redeems the
resulting code at the token endpoint:

	client := authsdk.NewSDKClient("https://auth.example.com")

	// Send the user's browser here
	url := client.BuildAuthorizeURL(clientID, redirectURI, state, []string{"openid", "profile"})

	// On the callback
	code, gotState, err := authsdk.ParseAuthorizationCallback(callbackURL)
	tokens, err := client.ExchangeAuthorizationCode(ctx, clientID, code, redirectURI)

The SDKClient never follows redirects, so the individual steps can also be
driven from Go, which is what the login UI and tests do:

	id, err := client.StartAuthorization(ctx, clientID, redirectURI, state, scopes)
	info, err := client.GetAuthorizationInfo(ctx, id)
	err = client.Login(ctx, id, email, password)
	result, err := client.CompleteAuthorization(ctx, id)

# Tokens

Access tokens are opaque. Resource servers resolve them through the token
info endpoint; unknown and expired tokens both come back with Active false:

	info, err := client.TokenInfo(ctx, tokens.AccessToken)
	if err == nil && info.Active {
		// info.Sub, info.Scope
	}

# Error Handling

Errors returned by the server are *OAuth2Error values carrying the HTTP
status and the RFC 6749 error code. Errors delivered to a redirect URI are
converted the same way:

	var oauthErr *authsdk.OAuth2Error
	if errors.As(err, &oauthErr) && oauthErr.Code == authsdk.ErrorCodeAccessDenied {
		// the user may not grant the requested scopes
	}
*/
package authsdk
