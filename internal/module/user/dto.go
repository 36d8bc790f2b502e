package user

// RegisterRequest represents the input for registering a new user.
type RegisterRequest struct {
	Login    string `json:"login" binding:"required,min=3,max=50"`
	Nickname string `json:"nickname" binding:"required,min=2,max=100"`
}

// SetRightRequest carries the new value of a right.
type SetRightRequest struct {
	Value *bool `json:"value" binding:"required"`
}
