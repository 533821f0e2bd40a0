package roster

// CreateGroupRequest represents the request to create a group
type CreateGroupRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Currency    string  `json:"currency" validate:"required,len=3"`
}

// AddMemberRequest represents the request to add a user to a group
type AddMemberRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

// CreateGuestRequest represents the request to add a guest to a group
type CreateGuestRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Currency    string  `json:"currency"`
	CreatedAt   string  `json:"created_at"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Currency:    g.Currency,
		CreatedAt:   g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
