package grpc

import (
	"context"

	"github.com/mori-tea/mori/internal/api"
	"github.com/mori-tea/mori/internal/server/auth"
	"github.com/mori-tea/mori/internal/server/models"
	"github.com/mori-tea/mori/internal/server/services"
)

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) ValidateSetupLink(ctx context.Context, req *api.ValidateSetupLinkRequest) (*api.Empty, error) {
	if err := s.users.ValidateSetupLink(ctx, req.Token); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) SetPassword(ctx context.Context, req *api.SetPasswordRequest) (*api.Empty, error) {
	if err := s.users.SetPassword(ctx, req.Token, req.Password); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.ChallengeResponse, error) {
	ch, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return challengeResponse(ch), nil
}

func (s *GRPCServer) ResendOTP(ctx context.Context, req *api.ChallengeRequest) (*api.Empty, error) {
	if err := s.users.ResendOTP(ctx, req.Challenge); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) VerifyOTP(ctx context.Context, req *api.VerifyOTPRequest) (*api.TokenResponse, error) {
	pair, err := s.users.VerifyOTP(ctx, req.Challenge, req.Code)
	if err != nil {
		return nil, toStatus(err)
	}
	return tokenResponse(pair), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.TokenResponse, error) {
	pair, err := s.users.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return tokenResponse(pair), nil
}

func (s *GRPCServer) RequestPasswordReset(ctx context.Context, req *api.EmailRequest) (*api.ChallengeResponse, error) {
	ch, err := s.users.RequestPasswordReset(ctx, req.Email)
	if err != nil {
		return nil, toStatus(err)
	}
	return challengeResponse(ch), nil
}

func (s *GRPCServer) VerifyPasswordReset(ctx context.Context, req *api.VerifyOTPRequest) (*api.Empty, error) {
	if err := s.users.VerifyPasswordReset(ctx, req.Challenge, req.Code); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *api.ResetPasswordRequest) (*api.Empty, error) {
	if err := s.users.ResetPassword(ctx, req.Challenge, req.Code, req.NewPassword); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *api.RefreshTokenRequest) (*api.Empty, error) {
	if err := s.users.Logout(ctx, req.RefreshToken); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) RegisterUser(ctx context.Context, req *api.RegisterUserRequest) (*api.User, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Register(ctx, actor, services.NewUser{
		Email:       req.Email,
		FullName:    req.FullName,
		Role:        models.Role(req.Role),
		IDORole:     req.IDORole,
		Phone:       req.Phone,
		CentraID:    req.CentraID,
		WarehouseID: req.WarehouseID,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "user_id", u.ID, "role", u.Role)
	return &api.User{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: string(u.Role), CreatedAt: u.CreatedAt}, nil
}

func (s *GRPCServer) CreateMachine(ctx context.Context, req *api.CreateMachineRequest) (*api.Machine, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.status.CreateMachine(ctx, actor, models.MachineKind(req.Kind), req.ID, req.CentraID, req.Capacity)
	if err != nil {
		return nil, toStatus(err)
	}
	return machineResponse(m), nil
}

func (s *GRPCServer) GetMachine(ctx context.Context, req *api.MachineRef) (*api.Machine, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.status.GetMachine(ctx, actor, models.MachineKind(req.Kind), req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return machineResponse(m), nil
}

func (s *GRPCServer) SetMachineStatus(ctx context.Context, req *api.SetMachineStatusRequest) (*api.Machine, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.status.SetMachineStatus(ctx, actor, models.MachineKind(req.Kind), req.ID, models.MachineStatus(req.Status))
	if err != nil {
		return nil, toStatus(err)
	}
	return machineResponse(m), nil
}

type machineAction func(ctx context.Context, actor auth.Identity, kind models.MachineKind, id string) (*models.Machine, error)

func (s *GRPCServer) machineAction(ctx context.Context, req *api.MachineRef, action machineAction) (*api.Machine, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	m, err := action(ctx, actor, models.MachineKind(req.Kind), req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return machineResponse(m), nil
}

func (s *GRPCServer) StartMachine(ctx context.Context, req *api.MachineRef) (*api.Machine, error) {
	return s.machineAction(ctx, req, s.status.StartMachine)
}

func (s *GRPCServer) StopMachine(ctx context.Context, req *api.MachineRef) (*api.Machine, error) {
	return s.machineAction(ctx, req, s.status.StopMachine)
}

func (s *GRPCServer) FinishMachine(ctx context.Context, req *api.MachineRef) (*api.Machine, error) {
	return s.machineAction(ctx, req, s.status.FinishMachine)
}

func (s *GRPCServer) CreateExpedition(ctx context.Context, req *api.CreateExpeditionRequest) (*api.Expedition, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.status.CreateExpedition(ctx, actor, req.CentraID, req.Destination, req.TotalPackages, req.ServiceDetails, req.EstimatedArrival)
	if err != nil {
		return nil, toStatus(err)
	}
	return expeditionResponse(e), nil
}

func (s *GRPCServer) GetExpedition(ctx context.Context, req *api.ExpeditionRef) (*api.Expedition, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.status.GetExpedition(ctx, actor, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return expeditionResponse(e), nil
}

func (s *GRPCServer) SetExpeditionStatus(ctx context.Context, req *api.SetExpeditionStatusRequest) (*api.Expedition, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.status.SetExpeditionStatus(ctx, actor, req.ID, models.ExpeditionStatus(req.Status))
	if err != nil {
		return nil, toStatus(err)
	}
	return expeditionResponse(e), nil
}

func (s *GRPCServer) ListNotifications(ctx context.Context, req *api.ListNotificationsRequest) (*api.ListNotificationsResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.notifications.ListNotifications(ctx, actor, req.CentraID, req.UnreadOnly, req.Limit)
	if err != nil {
		return nil, toStatus(err)
	}

	out := make([]api.Notification, 0, len(items))
	for _, n := range items {
		out = append(out, api.Notification{
			ID:        n.ID,
			CentraID:  n.CentraID,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
			IsRead:    n.IsRead,
		})
	}
	return &api.ListNotificationsResponse{Notifications: out}, nil
}

func (s *GRPCServer) MarkNotificationRead(ctx context.Context, req *api.NotificationRef) (*api.Empty, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.notifications.MarkNotificationRead(ctx, actor, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) CreateReceipt(ctx context.Context, req *api.CreateReceiptRequest) (*api.Receipt, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	r, err := s.receipts.CreateReceipt(ctx, actor, req.PackageID, req.TotalWeight, req.Note)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.Receipt{
		ID:          r.ID,
		UserID:      r.UserID,
		PackageID:   r.PackageID,
		TotalWeight: r.TotalWeight,
		Note:        r.Note,
		DocumentKey: r.DocumentKey,
		AcceptedAt:  r.AcceptedAt,
	}, nil
}

func (s *GRPCServer) RequestReceiptUpload(ctx context.Context, req *api.ReceiptRef) (*api.ReceiptUploadResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	key, url, err := s.receipts.RequestReceiptUpload(ctx, actor, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.ReceiptUploadResponse{Key: key, URL: url}, nil
}

func (s *GRPCServer) GetReceiptDocumentURL(ctx context.Context, req *api.ReceiptRef) (*api.URLResponse, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	url, err := s.receipts.GetReceiptDocumentURL(ctx, actor, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.URLResponse{URL: url}, nil
}

func challengeResponse(c *services.Challenge) *api.ChallengeResponse {
	return &api.ChallengeResponse{Challenge: c.Value, ExpiresAt: c.ExpiresAt}
}

func tokenResponse(p *services.TokenPair) *api.TokenResponse {
	return &api.TokenResponse{
		AccessToken:      p.AccessToken,
		RefreshToken:     p.RefreshToken,
		AccessExpiresAt:  p.AccessExpiresAt,
		RefreshExpiresAt: p.RefreshExpiresAt,
	}
}

func machineResponse(m *models.Machine) *api.Machine {
	return &api.Machine{
		ID:        m.ID,
		Kind:      string(m.Kind),
		CentraID:  m.CentraID,
		Capacity:  m.Capacity,
		Status:    string(m.Status),
		UpdatedAt: m.UpdatedAt,
	}
}

func expeditionResponse(e *models.Expedition) *api.Expedition {
	return &api.Expedition{
		ID:               e.ID,
		CentraID:         e.CentraID,
		Destination:      e.Destination,
		TotalPackages:    e.TotalPackages,
		ServiceDetails:   e.ServiceDetails,
		EstimatedArrival: e.EstimatedArrival,
		Status:           string(e.Status),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}
