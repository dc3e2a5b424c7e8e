package common

// AccessTokenHeaderName is the gRPC metadata key carrying the identity
// provider's access token.
const AccessTokenHeaderName = "access_token"

// ShareTokenHeaderName is the optional gRPC metadata key carrying a share
// token, required to use a grant that names no one.
const ShareTokenHeaderName = "share_token"
