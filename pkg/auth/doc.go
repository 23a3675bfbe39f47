// Package auth provides credential hashing and signed bearer tokens for the chat server.
//
// # Overview
//
// Authentication is stateless. A user proves their password once at signup or
// signin and receives an EdDSA (Ed25519) JWT that embeds their public identity.
// Every later request presents that token and is verified with the public key
// alone; there is no session table and no per-request database round trip.
//
// # Passwords
//
// Passwords are hashed with argon2id and stored as a PHC string:
//
//	hasher := auth.NewPasswordHasher(auth.DefaultArgon2Params())
//	encoded, err := hasher.Hash("hunter42")
//	// $argon2id$v=19$m=19456,t=2,p=1$<salt>$<key>
//	ok, err := hasher.Verify("hunter42", encoded)
//
// Verify returns (false, nil) for a wrong password and ErrMalformedHash only
// when the stored string cannot be decoded.
//
// # Tokens
//
// Keys are loaded once at startup. A malformed PEM or a key that is not
// Ed25519 fails with ErrCryptoConfig and must abort the process:
//
//	keys, err := auth.LoadKeyPair(privatePEM, publicPEM)
//	token, err := keys.Signer.Issue(identity)
//	identity, err := keys.Verifier.Verify(token)
//
// Tokens carry iss and aud "chat-server" and expire seven days after issue.
// A token is expired from the exact second of its exp claim onward.
// Verification failures are ErrExpiredToken or ErrInvalidToken.
//
// # Audit
//
// AuditLogger writes signin results, authentication rejections and membership
// denials as structured log lines and counts rejections by reason.
package auth
