package api

import (
	"context"

	"google.golang.org/grpc"
)

// Client is the typed stub for MoriService. Every call uses the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *Client) ValidateSetupLink(ctx context.Context, in *ValidateSetupLinkRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodValidateSetupLink, in, opts)
}

func (c *Client) SetPassword(ctx context.Context, in *SetPasswordRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodSetPassword, in, opts)
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*ChallengeResponse, error) {
	return invoke[ChallengeResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *Client) ResendOTP(ctx context.Context, in *ChallengeRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodResendOTP, in, opts)
}

func (c *Client) VerifyOTP(ctx context.Context, in *VerifyOTPRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodVerifyOTP, in, opts)
}

func (c *Client) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *Client) RequestPasswordReset(ctx context.Context, in *EmailRequest, opts ...grpc.CallOption) (*ChallengeResponse, error) {
	return invoke[ChallengeResponse](ctx, c.cc, MethodRequestPasswordReset, in, opts)
}

func (c *Client) VerifyPasswordReset(ctx context.Context, in *VerifyOTPRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodVerifyPasswordReset, in, opts)
}

func (c *Client) ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodResetPassword, in, opts)
}

func (c *Client) Logout(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodLogout, in, opts)
}

func (c *Client) RegisterUser(ctx context.Context, in *RegisterUserRequest, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, MethodRegisterUser, in, opts)
}

func (c *Client) CreateMachine(ctx context.Context, in *CreateMachineRequest, opts ...grpc.CallOption) (*Machine, error) {
	return invoke[Machine](ctx, c.cc, MethodCreateMachine, in, opts)
}

func (c *Client) GetMachine(ctx context.Context, in *MachineRef, opts ...grpc.CallOption) (*Machine, error) {
	return invoke[Machine](ctx, c.cc, MethodGetMachine, in, opts)
}

func (c *Client) SetMachineStatus(ctx context.Context, in *SetMachineStatusRequest, opts ...grpc.CallOption) (*Machine, error) {
	return invoke[Machine](ctx, c.cc, MethodSetMachineStatus, in, opts)
}

func (c *Client) StartMachine(ctx context.Context, in *MachineRef, opts ...grpc.CallOption) (*Machine, error) {
	return invoke[Machine](ctx, c.cc, MethodStartMachine, in, opts)
}

func (c *Client) StopMachine(ctx context.Context, in *MachineRef, opts ...grpc.CallOption) (*Machine, error) {
	return invoke[Machine](ctx, c.cc, MethodStopMachine, in, opts)
}

func (c *Client) FinishMachine(ctx context.Context, in *MachineRef, opts ...grpc.CallOption) (*Machine, error) {
	return invoke[Machine](ctx, c.cc, MethodFinishMachine, in, opts)
}

func (c *Client) CreateExpedition(ctx context.Context, in *CreateExpeditionRequest, opts ...grpc.CallOption) (*Expedition, error) {
	return invoke[Expedition](ctx, c.cc, MethodCreateExpedition, in, opts)
}

func (c *Client) GetExpedition(ctx context.Context, in *ExpeditionRef, opts ...grpc.CallOption) (*Expedition, error) {
	return invoke[Expedition](ctx, c.cc, MethodGetExpedition, in, opts)
}

func (c *Client) SetExpeditionStatus(ctx context.Context, in *SetExpeditionStatusRequest, opts ...grpc.CallOption) (*Expedition, error) {
	return invoke[Expedition](ctx, c.cc, MethodSetExpeditionStatus, in, opts)
}

func (c *Client) ListNotifications(ctx context.Context, in *ListNotificationsRequest, opts ...grpc.CallOption) (*ListNotificationsResponse, error) {
	return invoke[ListNotificationsResponse](ctx, c.cc, MethodListNotifications, in, opts)
}

func (c *Client) MarkNotificationRead(ctx context.Context, in *NotificationRef, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodMarkNotificationRead, in, opts)
}

func (c *Client) CreateReceipt(ctx context.Context, in *CreateReceiptRequest, opts ...grpc.CallOption) (*Receipt, error) {
	return invoke[Receipt](ctx, c.cc, MethodCreateReceipt, in, opts)
}

func (c *Client) RequestReceiptUpload(ctx context.Context, in *ReceiptRef, opts ...grpc.CallOption) (*ReceiptUploadResponse, error) {
	return invoke[ReceiptUploadResponse](ctx, c.cc, MethodRequestReceiptUpload, in, opts)
}

func (c *Client) GetReceiptDocumentURL(ctx context.Context, in *ReceiptRef, opts ...grpc.CallOption) (*URLResponse, error) {
	return invoke[URLResponse](ctx, c.cc, MethodGetReceiptDocumentURL, in, opts)
}
