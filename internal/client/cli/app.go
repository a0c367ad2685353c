package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/mori-tea/mori/internal/api"
	"github.com/mori-tea/mori/internal/client/client"
	"github.com/mori-tea/mori/internal/client/config"
	"github.com/mori-tea/mori/internal/netx"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// backend is the subset of client.GRPCClient the commands use.
type backend interface {
	Ping(ctx context.Context) error
	Close() error
	AccessToken() string
	IsLoggedIn() bool
	Login(ctx context.Context, email string, password []byte) error
	ResendOTP(ctx context.Context) error
	VerifyOTP(ctx context.Context, code string) error
	Logout(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, code string, password []byte) error
	MachineAction(ctx context.Context, action, kind, id string) (*api.Machine, error)
	SetMachineStatus(ctx context.Context, kind, id, st string) (*api.Machine, error)
	GetExpedition(ctx context.Context, id int64) (*api.Expedition, error)
	SetExpeditionStatus(ctx context.Context, id int64, st string) (*api.Expedition, error)
	ListNotifications(ctx context.Context, centraID int64, unreadOnly bool, limit int) ([]api.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	CreateReceipt(ctx context.Context, packageID string, weight float64, note string) (*api.Receipt, error)
	RequestReceiptUpload(ctx context.Context, id int64) (string, string, error)
	GetReceiptDocumentURL(ctx context.Context, id int64) (string, error)
}

// Test seams for the live feed and object storage transfers.
var (
	watchFn    = client.WatchNotifications
	uploadFn   = netx.UploadToS3PresignedURL
	downloadFn = netx.DownloadPresignedURL
)

type App struct {
	config *config.Config
	api    backend
	email  string
	reader *bufio.Reader
	out    io.Writer

	modeMu sync.Mutex
	Mode   Mode

	watchMu     sync.Mutex
	watchCancel context.CancelFunc
	watchDone   chan struct{}
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewMoriClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}
	return newApp(c, apiClient, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, b backend, in io.Reader, out io.Writer) *App {
	return &App{config: c, api: b, reader: bufio.NewReader(in), out: out, Mode: ModeOffline}
}

// Run starts the connectivity watcher and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer func() {
		a.stopWatch()
		_ = a.api.Close()
	}()

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) status() string {
	who := "guest"
	if a.isLoggedIn() {
		who = a.email
	}
	return fmt.Sprintf("%s | %s", a.mode(), who)
}

func (a *App) isLoggedIn() bool {
	return a.api.IsLoggedIn()
}

func (a *App) mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.Mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

// rpc bounds a single call by the configured request timeout.
func (a *App) rpc(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.api.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
