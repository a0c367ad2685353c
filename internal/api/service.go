// Package api defines the wire contract of mori.v1.MoriService: plain Go
// messages carried over gRPC with a JSON codec.
package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "mori.v1.MoriService"

const (
	MethodPing                  = "Ping"
	MethodValidateSetupLink     = "ValidateSetupLink"
	MethodSetPassword           = "SetPassword"
	MethodLogin                 = "Login"
	MethodResendOTP             = "ResendOTP"
	MethodVerifyOTP             = "VerifyOTP"
	MethodRefreshToken          = "RefreshToken"
	MethodRequestPasswordReset  = "RequestPasswordReset"
	MethodVerifyPasswordReset   = "VerifyPasswordReset"
	MethodResetPassword         = "ResetPassword"
	MethodLogout                = "Logout"
	MethodRegisterUser          = "RegisterUser"
	MethodCreateMachine         = "CreateMachine"
	MethodGetMachine            = "GetMachine"
	MethodSetMachineStatus      = "SetMachineStatus"
	MethodStartMachine          = "StartMachine"
	MethodStopMachine           = "StopMachine"
	MethodFinishMachine         = "FinishMachine"
	MethodCreateExpedition      = "CreateExpedition"
	MethodGetExpedition         = "GetExpedition"
	MethodSetExpeditionStatus   = "SetExpeditionStatus"
	MethodListNotifications     = "ListNotifications"
	MethodMarkNotificationRead  = "MarkNotificationRead"
	MethodCreateReceipt         = "CreateReceipt"
	MethodRequestReceiptUpload  = "RequestReceiptUpload"
	MethodGetReceiptDocumentURL = "GetReceiptDocumentURL"
)

// FullMethod returns the gRPC path of a method, as seen by interceptors.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// Server is implemented by the gRPC transport.
type Server interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)

	ValidateSetupLink(context.Context, *ValidateSetupLinkRequest) (*Empty, error)
	SetPassword(context.Context, *SetPasswordRequest) (*Empty, error)
	Login(context.Context, *LoginRequest) (*ChallengeResponse, error)
	ResendOTP(context.Context, *ChallengeRequest) (*Empty, error)
	VerifyOTP(context.Context, *VerifyOTPRequest) (*TokenResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error)
	RequestPasswordReset(context.Context, *EmailRequest) (*ChallengeResponse, error)
	VerifyPasswordReset(context.Context, *VerifyOTPRequest) (*Empty, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*Empty, error)
	Logout(context.Context, *RefreshTokenRequest) (*Empty, error)
	RegisterUser(context.Context, *RegisterUserRequest) (*User, error)

	CreateMachine(context.Context, *CreateMachineRequest) (*Machine, error)
	GetMachine(context.Context, *MachineRef) (*Machine, error)
	SetMachineStatus(context.Context, *SetMachineStatusRequest) (*Machine, error)
	StartMachine(context.Context, *MachineRef) (*Machine, error)
	StopMachine(context.Context, *MachineRef) (*Machine, error)
	FinishMachine(context.Context, *MachineRef) (*Machine, error)

	CreateExpedition(context.Context, *CreateExpeditionRequest) (*Expedition, error)
	GetExpedition(context.Context, *ExpeditionRef) (*Expedition, error)
	SetExpeditionStatus(context.Context, *SetExpeditionStatusRequest) (*Expedition, error)

	ListNotifications(context.Context, *ListNotificationsRequest) (*ListNotificationsResponse, error)
	MarkNotificationRead(context.Context, *NotificationRef) (*Empty, error)

	CreateReceipt(context.Context, *CreateReceiptRequest) (*Receipt, error)
	RequestReceiptUpload(context.Context, *ReceiptRef) (*ReceiptUploadResponse, error)
	GetReceiptDocumentURL(context.Context, *ReceiptRef) (*URLResponse, error)
}

func unary[Req, Resp any](name string, call func(Server, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(Server), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(Server), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, Server.Ping),
		unary(MethodValidateSetupLink, Server.ValidateSetupLink),
		unary(MethodSetPassword, Server.SetPassword),
		unary(MethodLogin, Server.Login),
		unary(MethodResendOTP, Server.ResendOTP),
		unary(MethodVerifyOTP, Server.VerifyOTP),
		unary(MethodRefreshToken, Server.RefreshToken),
		unary(MethodRequestPasswordReset, Server.RequestPasswordReset),
		unary(MethodVerifyPasswordReset, Server.VerifyPasswordReset),
		unary(MethodResetPassword, Server.ResetPassword),
		unary(MethodLogout, Server.Logout),
		unary(MethodRegisterUser, Server.RegisterUser),
		unary(MethodCreateMachine, Server.CreateMachine),
		unary(MethodGetMachine, Server.GetMachine),
		unary(MethodSetMachineStatus, Server.SetMachineStatus),
		unary(MethodStartMachine, Server.StartMachine),
		unary(MethodStopMachine, Server.StopMachine),
		unary(MethodFinishMachine, Server.FinishMachine),
		unary(MethodCreateExpedition, Server.CreateExpedition),
		unary(MethodGetExpedition, Server.GetExpedition),
		unary(MethodSetExpeditionStatus, Server.SetExpeditionStatus),
		unary(MethodListNotifications, Server.ListNotifications),
		unary(MethodMarkNotificationRead, Server.MarkNotificationRead),
		unary(MethodCreateReceipt, Server.CreateReceipt),
		unary(MethodRequestReceiptUpload, Server.RequestReceiptUpload),
		unary(MethodGetReceiptDocumentURL, Server.GetReceiptDocumentURL),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mori/v1/mori",
}

func RegisterServer(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}
