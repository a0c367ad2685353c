package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mori-tea/mori/internal/common"
	"github.com/mori-tea/mori/internal/dbx"
	"github.com/mori-tea/mori/internal/server/mail"
	"github.com/mori-tea/mori/internal/server/models"
	"github.com/mori-tea/mori/internal/server/repositories/expeditions"
	"github.com/mori-tea/mori/internal/server/repositories/machines"
	"github.com/mori-tea/mori/internal/server/repositories/notifications"
	"github.com/mori-tea/mori/internal/server/repositories/receipts"
	"github.com/mori-tea/mori/internal/server/repositories/refreshtokens"
	"github.com/mori-tea/mori/internal/server/repositories/scopes"
	"github.com/mori-tea/mori/internal/server/repositories/urltokens"
	"github.com/mori-tea/mori/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func ptr(v int64) *int64 { return &v }

// --- users ---

type fakeUsers struct {
	byID      map[int64]*models.User
	nextID    int64
	createErr error
	getErr    error
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.byID[u.ID] = &cp
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) SetPassword(_ context.Context, id int64, hash string) error {
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.HashedPassword = hash
	u.IsPasswordSet = true
	return nil
}

// --- url tokens ---

type fakeURLTokens struct {
	m         map[string]*models.URLToken
	createErr error
	deleteErr error
}

func (f *fakeURLTokens) Create(_ context.Context, t *models.URLToken) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *t
	f.m[t.Value] = &cp
	return nil
}

func (f *fakeURLTokens) Find(_ context.Context, value string) (*models.URLToken, error) {
	t, ok := f.m[value]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeURLTokens) Delete(_ context.Context, value string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.m[value]; !ok {
		return common.ErrInvalidToken
	}
	delete(f.m, value)
	return nil
}

// --- refresh tokens ---

type fakeRefreshTokens struct {
	m         map[string]*models.RefreshToken
	createErr error
	expired   int64
	purgeErr  error
	purges    int
}

func (f *fakeRefreshTokens) Create(_ context.Context, t *models.RefreshToken) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *t
	f.m[t.ID] = &cp
	return nil
}

func (f *fakeRefreshTokens) Find(_ context.Context, id string) (*models.RefreshToken, error) {
	t, ok := f.m[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeRefreshTokens) Delete(_ context.Context, id string) error {
	delete(f.m, id)
	return nil
}

func (f *fakeRefreshTokens) DeleteExpired(context.Context) (int64, error) {
	f.purges++
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	return f.expired, nil
}

// --- scopes ---

type fakeScopes struct {
	centra    map[int64]int64
	warehouse map[int64]int64
	lookupErr error
	assignErr error
}

func (f *fakeScopes) CentraForUser(_ context.Context, userID int64) (int64, error) {
	return f.lookup(f.centra, userID)
}

func (f *fakeScopes) WarehouseForUser(_ context.Context, userID int64) (int64, error) {
	return f.lookup(f.warehouse, userID)
}

func (f *fakeScopes) lookup(m map[int64]int64, userID int64) (int64, error) {
	if f.lookupErr != nil {
		return 0, f.lookupErr
	}
	v, ok := m[userID]
	if !ok {
		return 0, common.ErrorNotFound
	}
	return v, nil
}

func (f *fakeScopes) AssignCentra(_ context.Context, userID, centraID int64) error {
	if f.assignErr != nil {
		return f.assignErr
	}
	f.centra[userID] = centraID
	return nil
}

func (f *fakeScopes) AssignWarehouse(_ context.Context, userID, warehouseID int64) error {
	if f.assignErr != nil {
		return f.assignErr
	}
	f.warehouse[userID] = warehouseID
	return nil
}

// --- machines ---

type fakeMachines struct {
	m         map[string]*models.Machine
	updateErr error
	updates   int
	locks     int
}

func machineKey(kind models.MachineKind, id string) string { return string(kind) + "/" + id }

func (f *fakeMachines) Create(_ context.Context, m *models.Machine) (*models.Machine, error) {
	k := machineKey(m.Kind, m.ID)
	if _, ok := f.m[k]; ok {
		return nil, common.ErrorAlreadyExists
	}
	cp := *m
	f.m[k] = &cp
	return m, nil
}

func (f *fakeMachines) Get(_ context.Context, kind models.MachineKind, id string) (*models.Machine, error) {
	m, ok := f.m[machineKey(kind, id)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMachines) GetForUpdate(ctx context.Context, kind models.MachineKind, id string) (*models.Machine, error) {
	f.locks++
	return f.Get(ctx, kind, id)
}

func (f *fakeMachines) UpdateStatus(_ context.Context, kind models.MachineKind, id string, status models.MachineStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	m, ok := f.m[machineKey(kind, id)]
	if !ok {
		return common.ErrorNotFound
	}
	f.updates++
	m.Status = status
	return nil
}

// --- expeditions ---

type fakeExpeditions struct {
	m       map[int64]*models.Expedition
	nextID  int64
	updates int
}

func (f *fakeExpeditions) Create(_ context.Context, e *models.Expedition) (*models.Expedition, error) {
	f.nextID++
	e.ID = f.nextID
	cp := *e
	f.m[e.ID] = &cp
	return e, nil
}

func (f *fakeExpeditions) Get(_ context.Context, id int64) (*models.Expedition, error) {
	e, ok := f.m[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeExpeditions) GetForUpdate(ctx context.Context, id int64) (*models.Expedition, error) {
	return f.Get(ctx, id)
}

func (f *fakeExpeditions) UpdateStatus(_ context.Context, id int64, status models.ExpeditionStatus) error {
	e, ok := f.m[id]
	if !ok {
		return common.ErrorNotFound
	}
	f.updates++
	e.Status = status
	return nil
}

// --- notifications ---

type fakeNotifications struct {
	items     []*models.Notification
	createErr error
	listArgs  []any
}

func (f *fakeNotifications) Create(_ context.Context, n *models.Notification) (*models.Notification, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	n.ID = int64(len(f.items) + 1)
	cp := *n
	f.items = append(f.items, &cp)
	return n, nil
}

func (f *fakeNotifications) Get(_ context.Context, id int64) (*models.Notification, error) {
	for _, n := range f.items {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeNotifications) List(_ context.Context, centraID int64, unreadOnly bool, limit int) ([]*models.Notification, error) {
	f.listArgs = []any{centraID, unreadOnly, limit}
	var out []*models.Notification
	for _, n := range f.items {
		if n.CentraID == centraID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id int64) error {
	for _, n := range f.items {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return common.ErrorNotFound
}

// --- receipts ---

type fakeReceipts struct {
	m      map[int64]*models.PackageReceipt
	nextID int64
}

func (f *fakeReceipts) Create(_ context.Context, r *models.PackageReceipt) (*models.PackageReceipt, error) {
	f.nextID++
	r.ID = f.nextID
	cp := *r
	f.m[r.ID] = &cp
	return r, nil
}

func (f *fakeReceipts) Get(_ context.Context, id int64) (*models.PackageReceipt, error) {
	r, ok := f.m[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReceipts) SetDocumentKey(_ context.Context, id int64, key string) error {
	r, ok := f.m[id]
	if !ok {
		return common.ErrorNotFound
	}
	r.DocumentKey = key
	return nil
}

// --- manager ---

type fakeRepoManager struct {
	users         *fakeUsers
	urlTokens     *fakeURLTokens
	refreshTokens *fakeRefreshTokens
	scopes        *fakeScopes
	machines      *fakeMachines
	expeditions   *fakeExpeditions
	notifications *fakeNotifications
	receipts      *fakeReceipts
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:         &fakeUsers{byID: map[int64]*models.User{}},
		urlTokens:     &fakeURLTokens{m: map[string]*models.URLToken{}},
		refreshTokens: &fakeRefreshTokens{m: map[string]*models.RefreshToken{}},
		scopes:        &fakeScopes{centra: map[int64]int64{}, warehouse: map[int64]int64{}},
		machines:      &fakeMachines{m: map[string]*models.Machine{}},
		expeditions:   &fakeExpeditions{m: map[int64]*models.Expedition{}},
		notifications: &fakeNotifications{},
		receipts:      &fakeReceipts{m: map[int64]*models.PackageReceipt{}},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error          { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                     { return m.users }
func (m *fakeRepoManager) URLTokens(dbx.DBTX) urltokens.Repository             { return m.urlTokens }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository     { return m.refreshTokens }
func (m *fakeRepoManager) Scopes(dbx.DBTX) scopes.Repository                   { return m.scopes }
func (m *fakeRepoManager) Machines(dbx.DBTX) machines.Repository               { return m.machines }
func (m *fakeRepoManager) Expeditions(dbx.DBTX) expeditions.Repository         { return m.expeditions }
func (m *fakeRepoManager) Notifications(dbx.DBTX) notifications.Repository     { return m.notifications }
func (m *fakeRepoManager) Receipts(dbx.DBTX) receipts.Repository               { return m.receipts }

// --- collaborators ---

type recordingPublisher struct {
	published []*models.Notification
}

func (p *recordingPublisher) Publish(n *models.Notification) {
	p.published = append(p.published, n)
}

type recordingSender struct {
	sent []mail.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, m mail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, m)
	return nil
}

func (s *recordingSender) last(t *testing.T) mail.Message {
	t.Helper()
	require.NotEmpty(t, s.sent, "no mail sent")
	return s.sent[len(s.sent)-1]
}
