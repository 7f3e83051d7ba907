package domain

// AuthCredentialKind tags the credential variants merchants can configure
// per connector.
type AuthCredentialKind int

const (
	AuthApiKeyOnly AuthCredentialKind = iota
	AuthApiKeyPlusProfile
	AuthOAuthToken
	AuthSignatureKeyPair
)

var authKindNames = map[AuthCredentialKind]string{
	AuthApiKeyOnly:        "api_key_only",
	AuthApiKeyPlusProfile: "api_key_plus_profile",
	AuthOAuthToken:        "oauth_token",
	AuthSignatureKeyPair:  "signature_key_pair",
}

func (k AuthCredentialKind) String() string {
	if name, ok := authKindNames[k]; ok {
		return name
	}
	return "unknown_auth_kind"
}

// AuthCredential is the merchant-configured credential for one connector.
// Each connector declares which Kind(s) it accepts; supplying an
// incompatible variant fails when the adapter materializes its auth
// context, before any network call.
type AuthCredential struct {
	Kind AuthCredentialKind

	APIKey    string // ApiKeyOnly, ApiKeyPlusProfile
	ProfileID string // ApiKeyPlusProfile
	Token     string // OAuthToken
	KeyID     string // SignatureKeyPair
	SecretKey string // SignatureKeyPair
}

// ApiKeyCredential builds an ApiKeyOnly credential.
func ApiKeyCredential(apiKey string) AuthCredential {
	return AuthCredential{Kind: AuthApiKeyOnly, APIKey: apiKey}
}

// ApiKeyProfileCredential builds an ApiKeyPlusProfile credential.
func ApiKeyProfileCredential(apiKey, profileID string) AuthCredential {
	return AuthCredential{Kind: AuthApiKeyPlusProfile, APIKey: apiKey, ProfileID: profileID}
}

// OAuthCredential builds an OAuthToken credential.
func OAuthCredential(token string) AuthCredential {
	return AuthCredential{Kind: AuthOAuthToken, Token: token}
}

// SignatureCredential builds a SignatureKeyPair credential.
func SignatureCredential(keyID, secretKey string) AuthCredential {
	return AuthCredential{Kind: AuthSignatureKeyPair, KeyID: keyID, SecretKey: secretKey}
}
