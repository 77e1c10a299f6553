package models

const BearerTokenType = "Bearer"

// TokenPair is handed to the transport layer, which places the tokens into
// cookies/headers and writes the refresh token into the revocation store.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
