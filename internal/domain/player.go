package domain

// Player is a profile reusable across games and sessions. AvatarColor is an
// opaque display attribute echoed back to the presentation layer.
type Player struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	AvatarColor string `json:"avatar_color"`
}
