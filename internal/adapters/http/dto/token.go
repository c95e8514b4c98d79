package dto

// TokenParam is the :token path parameter of the revoke route.
type TokenParam struct {
	Token string `uri:"token" json:"token" validate:"notempty"`
}

// TokenResponse is the body of a successful token issue.
type TokenResponse struct {
	Token string `json:"token"`
}
