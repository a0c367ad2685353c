package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mori-tea/mori/internal/api"
	"github.com/mori-tea/mori/internal/common"
	"github.com/mori-tea/mori/internal/server/auth"
	"github.com/mori-tea/mori/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const accessTokenKey = common.AccessTokenHeaderName

var publicMethods = map[string]bool{
	api.FullMethod(api.MethodPing):                 true,
	api.FullMethod(api.MethodValidateSetupLink):    true,
	api.FullMethod(api.MethodSetPassword):          true,
	api.FullMethod(api.MethodLogin):                true,
	api.FullMethod(api.MethodResendOTP):            true,
	api.FullMethod(api.MethodVerifyOTP):            true,
	api.FullMethod(api.MethodRefreshToken):         true,
	api.FullMethod(api.MethodRequestPasswordReset): true,
	api.FullMethod(api.MethodVerifyPasswordReset):  true,
	api.FullMethod(api.MethodResetPassword):        true,
}

var (
	adminOnly   = []models.Role{models.RoleAdmin}
	centraRoles = []models.Role{models.RoleAdmin, models.RoleCentra}
	expRoles    = []models.Role{models.RoleAdmin, models.RoleCentra, models.RoleXYZ}
	guardRoles  = []models.Role{models.RoleAdmin, models.RoleHarbourGuard}
)

// methodRoles lists who may call each authenticated method. A nil entry
// admits any signed-in user. Services repeat the tenant checks.
var methodRoles = map[string][]models.Role{
	api.FullMethod(api.MethodLogout):                nil,
	api.FullMethod(api.MethodRegisterUser):          adminOnly,
	api.FullMethod(api.MethodCreateMachine):         centraRoles,
	api.FullMethod(api.MethodGetMachine):            centraRoles,
	api.FullMethod(api.MethodSetMachineStatus):      centraRoles,
	api.FullMethod(api.MethodStartMachine):          centraRoles,
	api.FullMethod(api.MethodStopMachine):           centraRoles,
	api.FullMethod(api.MethodFinishMachine):         centraRoles,
	api.FullMethod(api.MethodCreateExpedition):      centraRoles,
	api.FullMethod(api.MethodGetExpedition):         expRoles,
	api.FullMethod(api.MethodSetExpeditionStatus):   expRoles,
	api.FullMethod(api.MethodListNotifications):     centraRoles,
	api.FullMethod(api.MethodMarkNotificationRead):  centraRoles,
	api.FullMethod(api.MethodCreateReceipt):         guardRoles,
	api.FullMethod(api.MethodRequestReceiptUpload):  guardRoles,
	api.FullMethod(api.MethodGetReceiptDocumentURL): guardRoles,
}

func roleAllowed(role models.Role, allowed []models.Role) bool {
	if allowed == nil {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	allowed, known := methodRoles[info.FullMethod]
	if !known {
		return nil, status.Error(codes.Unimplemented, "unknown method")
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(accessTokenKey); len(values) > 0 {
			accessToken = values[0]
		}
	}
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := s.verifier.VerifyAccess(accessToken)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	if !roleAllowed(claims.Role, allowed) {
		return nil, status.Error(codes.PermissionDenied, "forbidden")
	}

	return handler(auth.NewContext(ctx, claims), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	requestID := requestIDFrom(ctx)

	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{
		"request_id", requestID,
		"method", info.FullMethod,
		"duration", time.Since(start),
		"code", code.String(),
	}
	if code == codes.Internal || code == codes.Unknown {
		s.logger.Error(ctx, "grpc call", append(args, "error", err)...)
	} else {
		s.logger.Info(ctx, "grpc call", args...)
	}
	return resp, err
}

func actorFrom(ctx context.Context) (auth.Identity, error) {
	claims, ok := auth.FromContext(ctx)
	if !ok {
		return auth.Identity{}, status.Error(codes.Unauthenticated, "unauthorized")
	}
	id, err := claims.Identity()
	if err != nil {
		return auth.Identity{}, status.Error(codes.Unauthenticated, "unauthorized")
	}
	return id, nil
}

// requestIDFrom reuses a caller-supplied request id or makes a new one.
func requestIDFrom(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(common.RequestIDHeaderName); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return uuid.NewString()
}
