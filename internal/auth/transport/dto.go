package transport

type RegisterRequesterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=5,max=20"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type RegisterContractorRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=100"`
	BusinessName  string `json:"businessName" validate:"required,min=1,max=150"`
	LicenseNumber string `json:"licenseNumber" validate:"required,min=3,max=50"`
	LicenseClass  string `json:"licenseClass" validate:"required,min=1,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
