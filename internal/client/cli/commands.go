package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mori-tea/mori/internal/api"
	"github.com/mori-tea/mori/internal/common"
	"github.com/mori-tea/mori/internal/filex"
)

const (
	otpAttempts  = 3
	receiptsDir  = "receipts"
	timeLayout   = "2006-01-02 15:04"
	defaultLimit = 50
)

var errUsage = errors.New("wrong arguments, type help")

func (a *App) prompt(text string) (string, error) {
	return GetSimpleText(a.reader, text, a.out)
}

func (a *App) emailArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return a.prompt("Email")
}

func (a *App) Login(ctx context.Context, args []string) error {
	if a.isLoggedIn() {
		printlnFn("Already logged in as", a.email)
		return nil
	}

	email, err := a.emailArg(args)
	if err != nil {
		return err
	}
	pw, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	rctx, cancel := a.rpc(ctx)
	err = a.api.Login(rctx, email, pw)
	cancel()
	if err != nil {
		return err
	}

	for i := 0; i < otpAttempts; i++ {
		code, err := a.prompt("Enter the code sent to " + email + " (r to resend)")
		if err != nil {
			return err
		}

		rctx, cancel := a.rpc(ctx)
		if code == "r" {
			err = a.api.ResendOTP(rctx)
			cancel()
			if err != nil {
				return err
			}
			printlnFn("Code sent again")
			i--
			continue
		}
		err = a.api.VerifyOTP(rctx, code)
		cancel()
		if err == nil {
			a.email = email
			printlnFn("Logged in as", email)
			return nil
		}
		printlnFn("Error:", err)
	}
	return errors.New("too many wrong codes, log in again")
}

func (a *App) ResetPassword(ctx context.Context, args []string) error {
	email, err := a.emailArg(args)
	if err != nil {
		return err
	}

	rctx, cancel := a.rpc(ctx)
	err = a.api.RequestPasswordReset(rctx, email)
	cancel()
	if err != nil {
		return err
	}

	code, err := a.prompt("If the account exists a code was sent to " + email + ". Enter it")
	if err != nil {
		return err
	}
	pw, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	rctx, cancel = a.rpc(ctx)
	defer cancel()
	if err := a.api.ResetPassword(rctx, code, pw); err != nil {
		return err
	}
	printlnFn("Password changed, you can log in now")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.stopWatch()

	rctx, cancel := a.rpc(ctx)
	defer cancel()
	if err := a.api.Logout(rctx); err != nil {
		return err
	}
	a.email = ""
	printlnFn("Logged out")
	return nil
}

func (a *App) Machine(ctx context.Context, args []string) error {
	rctx, cancel := a.rpc(ctx)
	defer cancel()

	var (
		m   *api.Machine
		err error
	)
	switch {
	case len(args) == 4 && args[0] == "set":
		m, err = a.api.SetMachineStatus(rctx, args[1], args[2], args[3])
	case len(args) == 3 && args[0] != "set":
		m, err = a.api.MachineAction(rctx, args[0], args[1], args[2])
	default:
		return errUsage
	}
	if err != nil {
		return err
	}
	printlnFn(formatMachine(m))
	return nil
}

func (a *App) Expedition(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}

	rctx, cancel := a.rpc(ctx)
	defer cancel()

	var e *api.Expedition
	switch {
	case args[0] == "show" && len(args) == 2:
		e, err = a.api.GetExpedition(rctx, id)
	case args[0] == "status" && len(args) == 3:
		e, err = a.api.SetExpeditionStatus(rctx, id, args[2])
	default:
		return errUsage
	}
	if err != nil {
		return err
	}
	printlnFn(formatExpedition(e))
	return nil
}

func (a *App) Notifications(ctx context.Context, args []string) error {
	var (
		unread   bool
		centraID int64
		limit    = defaultLimit
	)
	for _, arg := range args {
		switch {
		case arg == "unread":
			unread = true
		case strings.HasPrefix(arg, "limit="):
			n, err := strconv.Atoi(strings.TrimPrefix(arg, "limit="))
			if err != nil || n <= 0 {
				return fmt.Errorf("bad limit %q", arg)
			}
			limit = n
		default:
			id, err := parseID(arg)
			if err != nil {
				return errUsage
			}
			centraID = id
		}
	}

	rctx, cancel := a.rpc(ctx)
	defer cancel()
	items, err := a.api.ListNotifications(rctx, centraID, unread, limit)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		printlnFn("No notifications")
		return nil
	}
	for _, n := range items {
		printlnFn(formatNotification(n))
	}
	return nil
}

func (a *App) Read(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	rctx, cancel := a.rpc(ctx)
	defer cancel()
	if err := a.api.MarkNotificationRead(rctx, id); err != nil {
		return err
	}
	printlnFn("Marked as read")
	return nil
}

// Watch follows the live feed in the background until unwatch, logout or exit.
func (a *App) Watch(ctx context.Context, args []string) error {
	var centraID int64
	if len(args) > 0 {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		centraID = id
	}

	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	if a.watchCancel != nil {
		return errors.New("already watching, type unwatch first")
	}

	wctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	a.watchCancel, a.watchDone = cancel, done

	token := a.api.AccessToken()
	go func() {
		defer close(done)
		err := watchFn(wctx, a.config.FeedURL, token, centraID, func(n api.Notification) {
			printlnFn("*", formatNotification(n))
		})
		if err != nil {
			printlnFn("Feed stopped:", err)
		}
	}()

	printlnFn("Watching notifications")
	return nil
}

func (a *App) Unwatch() error {
	if !a.stopWatch() {
		return errors.New("not watching")
	}
	printlnFn("Stopped watching")
	return nil
}

func (a *App) stopWatch() bool {
	a.watchMu.Lock()
	cancel, done := a.watchCancel, a.watchDone
	a.watchCancel, a.watchDone = nil, nil
	a.watchMu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	<-done
	return true
}

func (a *App) Receipt(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "add":
		return a.addReceipt(ctx, args[1:])
	case "upload":
		return a.uploadReceipt(ctx, args[1:])
	case "fetch":
		return a.fetchReceipt(ctx, args[1:])
	}
	return errUsage
}

func (a *App) addReceipt(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	weight, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("bad weight %q", args[1])
	}
	note, err := GetMultiline(a.reader, "Note (optional)", a.out)
	if err != nil {
		return err
	}

	rctx, cancel := a.rpc(ctx)
	defer cancel()
	r, err := a.api.CreateReceipt(rctx, args[0], weight, note)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Receipt #%d for package %s accepted at %s", r.ID, r.PackageID, r.AcceptedAt.Local().Format(timeLayout)))
	return nil
}

func (a *App) uploadReceipt(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return err
	}

	rctx, cancel := a.rpc(ctx)
	defer cancel()
	key, target, err := a.api.RequestReceiptUpload(rctx, id)
	if err != nil {
		return err
	}
	if err := uploadFn(rctx, target, f, fi.Size(), mime.TypeByExtension(filepath.Ext(args[1]))); err != nil {
		return err
	}
	printlnFn("Uploaded as", key)
	return nil
}

func (a *App) fetchReceipt(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	rctx, cancel := a.rpc(ctx)
	defer cancel()
	target, err := a.api.GetReceiptDocumentURL(rctx, id)
	if err != nil {
		return err
	}

	dir, err := filex.EnsureSubDir(receiptsDir)
	if err != nil {
		return err
	}
	f, err := filex.CreateNew(dir, documentName(id, target))
	if err != nil {
		return err
	}

	n, err := downloadFn(rctx, target, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	printlnFn(fmt.Sprintf("Saved %d bytes to %s", n, f.Name()))
	return nil
}

// documentName names a downloaded document after its receipt and storage key.
func documentName(id int64, target string) string {
	name := fmt.Sprintf("receipt-%d", id)
	if u, err := url.Parse(target); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" {
			name += "-" + base
		}
	}
	return name
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad id %q", s)
	}
	return id, nil
}

func formatMachine(m *api.Machine) string {
	return fmt.Sprintf("%s %s (centra %d, capacity %d): %s, updated %s",
		m.Kind, m.ID, m.CentraID, m.Capacity, m.Status, m.UpdatedAt.Local().Format(timeLayout))
}

func formatExpedition(e *api.Expedition) string {
	s := fmt.Sprintf("expedition #%d to %s (centra %d, %d packages): %s",
		e.ID, e.Destination, e.CentraID, e.TotalPackages, e.Status)
	if e.EstimatedArrival != nil {
		s += ", eta " + e.EstimatedArrival.Local().Format(timeLayout)
	}
	return s
}

func formatNotification(n api.Notification) string {
	mark := "[ ]"
	if n.IsRead {
		mark = "[x]"
	}
	return fmt.Sprintf("%s #%d %s %s", mark, n.ID, n.CreatedAt.Local().Format(timeLayout), n.Message)
}
