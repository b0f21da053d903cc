package dto

type CreateRoomRequest struct {
	RoomName string `json:"roomName"`
}

type CreateRoomResponse struct {
	RoomID string `json:"roomId"`
}

type TokenRequest struct {
	RoomName string `json:"roomName"`
	Username string `json:"username"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
