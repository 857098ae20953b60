package domain

type User struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type Profile struct {
	User     User             `json:"user_info"`
	Messages []ProfileMessage `json:"messages"`
}
