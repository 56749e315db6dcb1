package user

type Credentials struct {
	Login    string `json:"login" minLength:"3" maxLength:"64" doc:"Логин счетчика"`
	Password string `json:"password" minLength:"8" maxLength:"72"`
}

type registerInput struct {
	Body Credentials
}

type registerOutput struct {
	Body RegisterResponse
}

type RegisterResponse struct {
	ID     int    `json:"user_id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type loginInput struct {
	Body Credentials
}

type loginOutput struct {
	Body LoginResponse
}

type LoginResponse struct {
	Token     string `json:"token,omitempty"`
	Login     string `json:"login,omitempty"`
	ExpiresIn int    `json:"expires_in,omitempty" doc:"Срок жизни токена, секунды"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}
