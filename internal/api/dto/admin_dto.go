package dto

// GenerateRequest sizes the generated demo fixture.
type GenerateRequest struct {
	Users          int `json:"users" validate:"required,min=2,max=100"`
	Projects       int `json:"projects" validate:"required,min=1,max=50"`
	TicketsPerUser int `json:"tickets_per_user" validate:"required,min=1,max=50"`
}
