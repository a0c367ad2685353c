package grpc

import (
	"context"
	"time"

	"github.com/mori-tea/mori/internal/server/auth"
	"github.com/mori-tea/mori/internal/server/models"
	"github.com/mori-tea/mori/internal/server/services"
)

type fakeUsers struct {
	err           error
	pair          *services.TokenPair
	challenge     *services.Challenge
	registered    *models.User
	lastActor     auth.Identity
	lastEmail     string
	lastChallenge string
	lastCode      string
	loggedOut     string
}

func (f *fakeUsers) Register(_ context.Context, actor auth.Identity, in services.NewUser) (*models.User, error) {
	f.lastActor = actor
	if f.err != nil {
		return nil, f.err
	}
	f.registered = &models.User{ID: 21, Email: in.Email, FullName: in.FullName, Role: in.Role}
	return f.registered, nil
}
func (f *fakeUsers) ValidateSetupLink(context.Context, string) error    { return f.err }
func (f *fakeUsers) SetPassword(context.Context, string, string) error  { return f.err }
func (f *fakeUsers) ResendOTP(_ context.Context, challenge string) error {
	f.lastChallenge = challenge
	return f.err
}
func (f *fakeUsers) RequestPasswordReset(_ context.Context, email string) (*services.Challenge, error) {
	f.lastEmail = email
	return f.challenge, f.err
}
func (f *fakeUsers) Login(_ context.Context, email, _ string) (*services.Challenge, error) {
	f.lastEmail = email
	return f.challenge, f.err
}
func (f *fakeUsers) VerifyOTP(_ context.Context, challenge, code string) (*services.TokenPair, error) {
	f.lastChallenge, f.lastCode = challenge, code
	return f.pair, f.err
}
func (f *fakeUsers) Refresh(context.Context, string) (*services.TokenPair, error) {
	return f.pair, f.err
}
func (f *fakeUsers) Logout(_ context.Context, refresh string) error {
	f.loggedOut = refresh
	return f.err
}
func (f *fakeUsers) VerifyPasswordReset(_ context.Context, challenge, code string) error {
	f.lastChallenge, f.lastCode = challenge, code
	return f.err
}
func (f *fakeUsers) ResetPassword(_ context.Context, challenge, code, _ string) error {
	f.lastChallenge, f.lastCode = challenge, code
	return f.err
}

type fakeStatus struct {
	err        error
	lastActor  auth.Identity
	lastStatus string
	calls      []string
}

func (f *fakeStatus) machine(actor auth.Identity, call string, kind models.MachineKind, id string, st models.MachineStatus) (*models.Machine, error) {
	f.lastActor = actor
	f.calls = append(f.calls, call)
	f.lastStatus = string(st)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Machine{ID: id, Kind: kind, CentraID: 3, Capacity: 100, Status: st}, nil
}

func (f *fakeStatus) CreateMachine(_ context.Context, actor auth.Identity, kind models.MachineKind, id string, _ int64, _ int) (*models.Machine, error) {
	return f.machine(actor, "create", kind, id, models.MachineIdle)
}
func (f *fakeStatus) GetMachine(_ context.Context, actor auth.Identity, kind models.MachineKind, id string) (*models.Machine, error) {
	return f.machine(actor, "get", kind, id, models.MachineIdle)
}
func (f *fakeStatus) SetMachineStatus(_ context.Context, actor auth.Identity, kind models.MachineKind, id string, st models.MachineStatus) (*models.Machine, error) {
	return f.machine(actor, "set", kind, id, st)
}
func (f *fakeStatus) StartMachine(_ context.Context, actor auth.Identity, kind models.MachineKind, id string) (*models.Machine, error) {
	return f.machine(actor, "start", kind, id, models.MachineRunning)
}
func (f *fakeStatus) StopMachine(_ context.Context, actor auth.Identity, kind models.MachineKind, id string) (*models.Machine, error) {
	return f.machine(actor, "stop", kind, id, models.MachineIdle)
}
func (f *fakeStatus) FinishMachine(_ context.Context, actor auth.Identity, kind models.MachineKind, id string) (*models.Machine, error) {
	return f.machine(actor, "finish", kind, id, models.MachineFinished)
}

func (f *fakeStatus) expedition(actor auth.Identity, call string, id int64, st models.ExpeditionStatus) (*models.Expedition, error) {
	f.lastActor = actor
	f.calls = append(f.calls, call)
	f.lastStatus = string(st)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Expedition{ID: id, CentraID: 3, Destination: "Harbour", TotalPackages: 4, Status: st}, nil
}

func (f *fakeStatus) CreateExpedition(_ context.Context, actor auth.Identity, _ int64, _ string, _ int, _ string, _ *time.Time) (*models.Expedition, error) {
	return f.expedition(actor, "create_expedition", 1, models.ExpeditionPkgDelivering)
}
func (f *fakeStatus) GetExpedition(_ context.Context, actor auth.Identity, id int64) (*models.Expedition, error) {
	return f.expedition(actor, "get_expedition", id, models.ExpeditionPkgDelivering)
}
func (f *fakeStatus) SetExpeditionStatus(_ context.Context, actor auth.Identity, id int64, st models.ExpeditionStatus) (*models.Expedition, error) {
	return f.expedition(actor, "set_expedition", id, st)
}

type fakeNotifications struct {
	err      error
	items    []*models.Notification
	marked   int64
	listArgs []any
}

func (f *fakeNotifications) ListNotifications(_ context.Context, _ auth.Identity, centraID int64, unreadOnly bool, limit int) ([]*models.Notification, error) {
	f.listArgs = []any{centraID, unreadOnly, limit}
	return f.items, f.err
}
func (f *fakeNotifications) MarkNotificationRead(_ context.Context, _ auth.Identity, id int64) error {
	f.marked = id
	return f.err
}

type fakeReceipts struct {
	err error
}

func (f *fakeReceipts) CreateReceipt(_ context.Context, actor auth.Identity, packageID string, weight float64, note string) (*models.PackageReceipt, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.PackageReceipt{ID: 8, UserID: actor.UserID, PackageID: packageID, TotalWeight: weight, Note: note}, nil
}
func (f *fakeReceipts) RequestReceiptUpload(_ context.Context, _ auth.Identity, id int64) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "receipts/2024/05/8/k", "https://s3.example/put", nil
}
func (f *fakeReceipts) GetReceiptDocumentURL(context.Context, auth.Identity, int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://s3.example/get", nil
}
