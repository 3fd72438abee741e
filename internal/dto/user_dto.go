package dto

type ProfileResponse struct {
	User     UserDTO           `json:"user"`
	Progress DashboardResponse `json:"progress"`
	Docs     []DocumentDTO     `json:"docs"`
	DocCount int               `json:"doc_count"`
}

type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}
