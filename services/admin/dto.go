package admin

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
	Points   *int64 `json:"points"`
}

type PointsRequest struct {
	Delta int64 `json:"delta" binding:"required"`
}
