package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mori-tea/mori/internal/api"
	"github.com/mori-tea/mori/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *api.Client

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	challenge    string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	s.mu.RLock()
	access, refresh := s.accessToken, s.refreshToken
	s.mu.RUnlock()

	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) {
		return err
	}
	if refresh == "" || method == api.FullMethod(api.MethodRefreshToken) {
		return err
	}

	resp, rerr := s.client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: refresh})
	if rerr != nil {
		return rerr
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)

	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

func NewMoriClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
	s.refreshToken = refresh
}

// AccessToken returns the current access token, for the live feed.
func (s *GRPCClient) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) IsLoggedIn() bool {
	return s.AccessToken() != ""
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.PermissionDenied:
		return ErrForbidden
	case codes.NotFound:
		return ErrNotFound
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.InvalidArgument, codes.FailedPrecondition, codes.AlreadyExists, codes.ResourceExhausted:
		return errors.New(st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

// Login checks the password; on success the server emails a one-time code
// and the returned challenge is kept for ResendOTP and VerifyOTP.
func (s *GRPCClient) Login(ctx context.Context, email string, password []byte) error {
	resp, err := s.client.Login(ctx, &api.LoginRequest{Email: email, Password: string(password)})
	if err != nil {
		return s.mapError(err)
	}
	s.setChallenge(resp.Challenge)
	return nil
}

func (s *GRPCClient) ResendOTP(ctx context.Context) error {
	ch, err := s.pendingChallenge()
	if err != nil {
		return err
	}
	_, err = s.client.ResendOTP(ctx, &api.ChallengeRequest{Challenge: ch})
	return s.mapError(err)
}

func (s *GRPCClient) VerifyOTP(ctx context.Context, code string) error {
	ch, err := s.pendingChallenge()
	if err != nil {
		return err
	}
	resp, err := s.client.VerifyOTP(ctx, &api.VerifyOTPRequest{Challenge: ch, Code: code})
	if err != nil {
		return s.mapError(err)
	}
	s.setChallenge("")
	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

func (s *GRPCClient) setChallenge(ch string) {
	s.mu.Lock()
	s.challenge = ch
	s.mu.Unlock()
}

func (s *GRPCClient) pendingChallenge() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.challenge == "" {
		return "", ErrNoChallenge
	}
	return s.challenge, nil
}

func (s *GRPCClient) Logout(ctx context.Context) error {
	s.mu.RLock()
	refresh := s.refreshToken
	s.mu.RUnlock()
	if refresh == "" {
		return ErrNotLoggedIn
	}

	_, err := s.client.Logout(ctx, &api.RefreshTokenRequest{RefreshToken: refresh})
	s.setTokens("", "")
	return s.mapError(err)
}

func (s *GRPCClient) RequestPasswordReset(ctx context.Context, email string) error {
	resp, err := s.client.RequestPasswordReset(ctx, &api.EmailRequest{Email: email})
	if err != nil {
		return s.mapError(err)
	}
	s.setChallenge(resp.Challenge)
	return nil
}

func (s *GRPCClient) ResetPassword(ctx context.Context, code string, password []byte) error {
	ch, err := s.pendingChallenge()
	if err != nil {
		return err
	}
	_, err = s.client.ResetPassword(ctx, &api.ResetPasswordRequest{Challenge: ch, Code: code, NewPassword: string(password)})
	if err != nil {
		return s.mapError(err)
	}
	s.setChallenge("")
	return nil
}

// MachineAction runs start, stop or finish on a machine.
func (s *GRPCClient) MachineAction(ctx context.Context, action, kind, id string) (*api.Machine, error) {
	ref := &api.MachineRef{Kind: kind, ID: id}

	var (
		m   *api.Machine
		err error
	)
	switch action {
	case "start":
		m, err = s.client.StartMachine(ctx, ref)
	case "stop":
		m, err = s.client.StopMachine(ctx, ref)
	case "finish":
		m, err = s.client.FinishMachine(ctx, ref)
	case "show":
		m, err = s.client.GetMachine(ctx, ref)
	default:
		return nil, fmt.Errorf("unknown machine action %q", action)
	}
	if err != nil {
		return nil, s.mapError(err)
	}
	return m, nil
}

func (s *GRPCClient) SetMachineStatus(ctx context.Context, kind, id, st string) (*api.Machine, error) {
	m, err := s.client.SetMachineStatus(ctx, &api.SetMachineStatusRequest{Kind: kind, ID: id, Status: st})
	if err != nil {
		return nil, s.mapError(err)
	}
	return m, nil
}

func (s *GRPCClient) GetExpedition(ctx context.Context, id int64) (*api.Expedition, error) {
	e, err := s.client.GetExpedition(ctx, &api.ExpeditionRef{ID: id})
	if err != nil {
		return nil, s.mapError(err)
	}
	return e, nil
}

func (s *GRPCClient) SetExpeditionStatus(ctx context.Context, id int64, st string) (*api.Expedition, error) {
	e, err := s.client.SetExpeditionStatus(ctx, &api.SetExpeditionStatusRequest{ID: id, Status: st})
	if err != nil {
		return nil, s.mapError(err)
	}
	return e, nil
}

func (s *GRPCClient) ListNotifications(ctx context.Context, centraID int64, unreadOnly bool, limit int) ([]api.Notification, error) {
	resp, err := s.client.ListNotifications(ctx, &api.ListNotificationsRequest{CentraID: centraID, UnreadOnly: unreadOnly, Limit: limit})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Notifications, nil
}

func (s *GRPCClient) MarkNotificationRead(ctx context.Context, id int64) error {
	_, err := s.client.MarkNotificationRead(ctx, &api.NotificationRef{ID: id})
	return s.mapError(err)
}

func (s *GRPCClient) CreateReceipt(ctx context.Context, packageID string, weight float64, note string) (*api.Receipt, error) {
	r, err := s.client.CreateReceipt(ctx, &api.CreateReceiptRequest{PackageID: packageID, TotalWeight: weight, Note: note})
	if err != nil {
		return nil, s.mapError(err)
	}
	return r, nil
}

func (s *GRPCClient) RequestReceiptUpload(ctx context.Context, id int64) (string, string, error) {
	resp, err := s.client.RequestReceiptUpload(ctx, &api.ReceiptRef{ID: id})
	if err != nil {
		return "", "", s.mapError(err)
	}
	return resp.Key, resp.URL, nil
}

func (s *GRPCClient) GetReceiptDocumentURL(ctx context.Context, id int64) (string, error) {
	resp, err := s.client.GetReceiptDocumentURL(ctx, &api.ReceiptRef{ID: id})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.URL, nil
}
