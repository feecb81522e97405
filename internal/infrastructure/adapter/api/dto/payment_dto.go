package dto

// CheckoutResponse carries the provider checkout the frontend redirects to
type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CreditsResponse is the remaining analysis count
type CreditsResponse struct {
	RemainingAnalyses int `json:"remainingAnalyses"`
}

// VerifyPaymentResponse reports the provider-side state of a checkout session
type VerifyPaymentResponse struct {
	Paid              bool `json:"paid"`
	CreditsGranted    bool `json:"creditsGranted"`
	RemainingAnalyses int  `json:"remainingAnalyses"`
}
