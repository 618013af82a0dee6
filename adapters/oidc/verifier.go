package oidc

// ExchangeVerifier carries the state and nonce issued when the login started.
type ExchangeVerifier struct {
	reqState string
	reqNonce string
}

func NewExchangeVerifier(state, nonce string) *ExchangeVerifier {
	return &ExchangeVerifier{reqState: state, reqNonce: nonce}
}

// VerifyState rejects an empty expected state, which means the login was never started.
func (v *ExchangeVerifier) VerifyState(state string) bool {
	return v.reqState != "" && state == v.reqState
}

func (v *ExchangeVerifier) VerifyNonce(nonce string) bool {
	return v.reqNonce != "" && nonce == v.reqNonce
}
