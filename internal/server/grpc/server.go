package grpc

import (
	"context"
	"net"
	"time"

	"github.com/mori-tea/mori/internal/api"
	"github.com/mori-tea/mori/internal/logging"
	"github.com/mori-tea/mori/internal/server/auth"
	"github.com/mori-tea/mori/internal/server/models"
	"github.com/mori-tea/mori/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type tokenVerifier interface {
	VerifyAccess(token string) (*auth.Claims, error)
}

type userSvc interface {
	Register(ctx context.Context, actor auth.Identity, in services.NewUser) (*models.User, error)
	ValidateSetupLink(ctx context.Context, token string) error
	SetPassword(ctx context.Context, token, password string) error
	Login(ctx context.Context, email, password string) (*services.Challenge, error)
	ResendOTP(ctx context.Context, challenge string) error
	VerifyOTP(ctx context.Context, challenge, code string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	RequestPasswordReset(ctx context.Context, email string) (*services.Challenge, error)
	VerifyPasswordReset(ctx context.Context, challenge, code string) error
	ResetPassword(ctx context.Context, challenge, code, newPassword string) error
}

type statusSvc interface {
	CreateMachine(ctx context.Context, actor auth.Identity, kind models.MachineKind, id string, centraID int64, capacity int) (*models.Machine, error)
	GetMachine(ctx context.Context, actor auth.Identity, kind models.MachineKind, id string) (*models.Machine, error)
	SetMachineStatus(ctx context.Context, actor auth.Identity, kind models.MachineKind, id string, status models.MachineStatus) (*models.Machine, error)
	StartMachine(ctx context.Context, actor auth.Identity, kind models.MachineKind, id string) (*models.Machine, error)
	StopMachine(ctx context.Context, actor auth.Identity, kind models.MachineKind, id string) (*models.Machine, error)
	FinishMachine(ctx context.Context, actor auth.Identity, kind models.MachineKind, id string) (*models.Machine, error)
	CreateExpedition(ctx context.Context, actor auth.Identity, centraID int64, destination string, totalPackages int, details string, eta *time.Time) (*models.Expedition, error)
	GetExpedition(ctx context.Context, actor auth.Identity, id int64) (*models.Expedition, error)
	SetExpeditionStatus(ctx context.Context, actor auth.Identity, id int64, status models.ExpeditionStatus) (*models.Expedition, error)
}

type notificationSvc interface {
	ListNotifications(ctx context.Context, actor auth.Identity, centraID int64, unreadOnly bool, limit int) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, actor auth.Identity, id int64) error
}

type receiptSvc interface {
	CreateReceipt(ctx context.Context, actor auth.Identity, packageID string, totalWeight float64, note string) (*models.PackageReceipt, error)
	RequestReceiptUpload(ctx context.Context, actor auth.Identity, id int64) (string, string, error)
	GetReceiptDocumentURL(ctx context.Context, actor auth.Identity, id int64) (string, error)
}

// Services groups the business services exposed over gRPC.
type Services struct {
	Users         userSvc
	Status        statusSvc
	Notifications notificationSvc
	Receipts      receiptSvc
}

var _ api.Server = (*GRPCServer)(nil)

type GRPCServer struct {
	address       string
	users         userSvc
	status        statusSvc
	notifications notificationSvc
	receipts      receiptSvc
	verifier      tokenVerifier
	logger        logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, v tokenVerifier, svc Services) *GRPCServer {
	return &GRPCServer{
		address:       a,
		logger:        l.With("module", "grpc_server"),
		verifier:      v,
		users:         svc.Users,
		status:        svc.Status,
		notifications: svc.Notifications,
		receipts:      svc.Receipts,
	}
}

func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	api.RegisterServer(srv, s)

	h := health.NewServer()
	healthpb.RegisterHealthServer(srv, h)
	h.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return srv, h
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully when ctx ends.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv, h := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		h.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
