package api

import "time"

type Empty struct{}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type ValidateSetupLinkRequest struct {
	Token string `json:"token"`
}

type SetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

// ChallengeResponse carries the sealed challenge that binds the code step
// to the Login or RequestPasswordReset call before it.
type ChallengeResponse struct {
	Challenge string    `json:"challenge"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ChallengeRequest struct {
	Challenge string `json:"challenge"`
}

type VerifyOTPRequest struct {
	Challenge string `json:"challenge"`
	Code      string `json:"code"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type ResetPasswordRequest struct {
	Challenge   string `json:"challenge"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type RegisterUserRequest struct {
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Role        string `json:"role"`
	IDORole     string `json:"ido_role,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CentraID    *int64 `json:"centra_id,omitempty"`
	WarehouseID *int64 `json:"warehouse_id,omitempty"`
}

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type MachineRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type CreateMachineRequest struct {
	Kind     string `json:"kind"`
	ID       string `json:"id"`
	CentraID int64  `json:"centra_id"`
	Capacity int    `json:"capacity"`
}

type SetMachineStatusRequest struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Status string `json:"status"`
}

type Machine struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	CentraID  int64     `json:"centra_id"`
	Capacity  int       `json:"capacity"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateExpeditionRequest struct {
	CentraID         int64      `json:"centra_id"`
	Destination      string     `json:"destination"`
	TotalPackages    int        `json:"total_packages"`
	ServiceDetails   string     `json:"service_details,omitempty"`
	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
}

type ExpeditionRef struct {
	ID int64 `json:"id"`
}

type SetExpeditionStatusRequest struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

type Expedition struct {
	ID               int64      `json:"id"`
	CentraID         int64      `json:"centra_id"`
	Destination      string     `json:"destination"`
	TotalPackages    int        `json:"total_packages"`
	ServiceDetails   string     `json:"service_details,omitempty"`
	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type ListNotificationsRequest struct {
	CentraID   int64 `json:"centra_id,omitempty"`
	UnreadOnly bool  `json:"unread_only,omitempty"`
	Limit      int   `json:"limit,omitempty"`
}

type Notification struct {
	ID        int64     `json:"id"`
	CentraID  int64     `json:"centra_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	IsRead    bool      `json:"is_read"`
}

type ListNotificationsResponse struct {
	Notifications []Notification `json:"notifications"`
}

type NotificationRef struct {
	ID int64 `json:"id"`
}

type CreateReceiptRequest struct {
	PackageID   string  `json:"package_id"`
	TotalWeight float64 `json:"total_weight"`
	Note        string  `json:"note,omitempty"`
}

type Receipt struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	PackageID   string    `json:"package_id"`
	TotalWeight float64   `json:"total_weight"`
	Note        string    `json:"note,omitempty"`
	DocumentKey string    `json:"document_key,omitempty"`
	AcceptedAt  time.Time `json:"accepted_at"`
}

type ReceiptRef struct {
	ID int64 `json:"id"`
}

type ReceiptUploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type URLResponse struct {
	URL string `json:"url"`
}
