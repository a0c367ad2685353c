package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface runREPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, args []string) error
	ResetPassword(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	Machine(ctx context.Context, args []string) error
	Expedition(ctx context.Context, args []string) error
	Notifications(ctx context.Context, args []string) error
	Read(ctx context.Context, args []string) error
	Watch(ctx context.Context, args []string) error
	Unwatch() error
	Receipt(ctx context.Context, args []string) error
}

const (
	guestHelp = "Available commands: login [email], reset [email], exit"
	userHelp  = `Available commands:
  machine start|stop|finish|show <drying|flouring> <id>
  machine set <drying|flouring> <id> <idle|running|finished>
  expedition show <id>
  expedition status <id> <PKG_Delivering|PKG_Delivered|XYZ_PickingUp|XYZ_Completed|Missing>
  notifications [unread] [centra_id] [limit=N]
  read <notification_id>
  watch [centra_id] | unwatch
  receipt add <package_id> <weight> | upload <id> <file> | fetch <id>
  logout, exit`
)

// runREPL reads one command per line from reader and dispatches it to a.
// Command errors are printed and the loop keeps going. It returns on EOF,
// "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("mori> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if requiresLogin(cmd) && !a.isLoggedIn() {
			printlnFn("Please log in first")
			continue
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(userHelp)
			} else {
				printlnFn(guestHelp)
			}
		case "login":
			cmdErr = a.Login(ctx, args)
		case "reset":
			cmdErr = a.ResetPassword(ctx, args)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "m", "machine":
			cmdErr = a.Machine(ctx, args)
		case "e", "expedition":
			cmdErr = a.Expedition(ctx, args)
		case "n", "notifications":
			cmdErr = a.Notifications(ctx, args)
		case "read":
			cmdErr = a.Read(ctx, args)
		case "watch":
			cmdErr = a.Watch(ctx, args)
		case "unwatch":
			cmdErr = a.Unwatch()
		case "receipt":
			cmdErr = a.Receipt(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}

func requiresLogin(cmd string) bool {
	switch cmd {
	case "logout", "m", "machine", "e", "expedition", "n", "notifications",
		"read", "watch", "unwatch", "receipt":
		return true
	}
	return false
}
