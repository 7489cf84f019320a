// Package session owns the authentication state of the chat client.
//
// A Manager moves between three states:
//
//	Unauthenticated -> Authenticating -> Authenticated
//	Authenticating  -> Unauthenticated   (profile fetch failed)
//	Authenticated   -> Unauthenticated   (logout)
//
// Only the token is durable; it is kept by a TokenStore. Every transition
// bumps a generation counter and a profile fetch only lands if the
// generation it started under is still current, so a Logout issued while a
// fetch is in flight cannot be undone by that fetch.
package session
