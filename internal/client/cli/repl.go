package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Search(ctx context.Context, args []string) error
	View(ctx context.Context, id string) error
	Recent(ctx context.Context) error
	Forget(ctx context.Context, id string) error
	ClearRecent(ctx context.Context) error
	Post(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// runREPL starts a simple read–eval–print loop for the jobmarket CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF or when the user types
// "exit" or "quit".
//
//	Not logged in:
//	  - help           - show available commands
//	  - register       - create an account
//	  - login          - authenticate
//	  - exit | quit    - leave the program
//
//	Logged in:
//	  - search [words] [city=..] [category=..] [type=..] [sort=recent] [offset=..] [limit=..]
//	  - view <id>      - show a posting and remember it
//	  - recent         - recently viewed postings
//	  - forget <id>    - drop one posting from the recent list
//	  - clearrecent    - empty the recent list
//	  - post           - publish a posting (employers)
//	  - edit <id>      - change a posting (owner or admin)
//	  - delete <id>    - remove a posting (owner or admin)
//	  - logout         - log out
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("jm%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if needsSession(cmd) && !a.isLoggedIn() {
			printlnFn("Please log in first.")
			continue
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: search, view <id>, recent, forget <id>, clearrecent, post, edit <id>, delete <id>, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "s", "search":
			cmdErr = a.Search(ctx, args)

		case "v", "view", "forget", "edit", "delete":
			if len(args) == 0 {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				continue
			}
			switch cmd {
			case "v", "view":
				cmdErr = a.View(ctx, args[0])
			case "forget":
				cmdErr = a.Forget(ctx, args[0])
			case "edit":
				cmdErr = a.Edit(ctx, args[0])
			case "delete":
				cmdErr = a.Delete(ctx, args[0])
			}

		case "r", "recent":
			cmdErr = a.Recent(ctx)

		case "clearrecent":
			cmdErr = a.ClearRecent(ctx)

		case "post":
			cmdErr = a.Post(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr.Error())
		}
	}
}

func needsSession(cmd string) bool {
	switch cmd {
	case "help", "register", "login", "exit", "quit":
		return false
	}
	return true
}
