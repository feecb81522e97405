package dto

// UpdateUserRequest changes the display name of the authenticated account
type UpdateUserRequest struct {
	Name string `json:"name" binding:"required"`
}

// ProfileResponse is the authenticated account with its credit count
type ProfileResponse struct {
	User              UserResponse `json:"user"`
	RemainingAnalyses int          `json:"remainingAnalyses"`
}
