package dto

type UpdatePreferenceRequest struct {
	Theme string `json:"theme" binding:"required,oneof=light dark system"`
}

type PreferenceResponse struct {
	Theme string `json:"theme"`
}
