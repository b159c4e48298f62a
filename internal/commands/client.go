package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"habits/internal/adapter/diskv"
	"habits/internal/adapter/remote"
	"habits/internal/config"
	"habits/internal/tracker"
)

var (
	errNotLoggedIn    = errors.New("not logged in, run `habits login <username>` first")
	errSessionExpired = errors.New("session expired, run `habits login <username>` again")
)

// client is one CLI invocation's engine plus its persisted credentials.
type client struct {
	cfg        *config.Client
	store      *diskv.Store
	engine     *tracker.Engine
	logger     *log.Logger
	celebrated bool
}

func (o *rootOptions) connect(cmd *cobra.Command) (*client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.Server != "" {
		cfg.Server = o.Server
	}

	logger := log.New(io.Discard, "", 0)
	if o.Verbose {
		logger = log.New(cmd.ErrOrStderr(), "habits: ", log.LstdFlags)
	}

	c := &client{cfg: cfg, store: diskv.Open(cfg.StateDir), logger: logger}
	rc, err := remote.New(cfg.Server,
		remote.WithTimeout(cfg.Timeout),
		remote.WithCookieStore(c.store),
		remote.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	c.engine = tracker.NewEngine(rc, tracker.WithCelebration(func() { c.celebrated = true }))
	c.engine.OnSessionChange(c.persistSession)
	return c, nil
}

func (c *client) persistSession(s tracker.State, user tracker.Identity) {
	var err error
	if s == tracker.Authenticated {
		err = c.store.SaveIdentity(string(user))
	} else {
		err = c.store.Clear()
	}
	if err != nil {
		c.logger.Printf("persist session: %v", err)
	}
}

// resume restores the saved session and loads its data. A celebration
// triggered by that initial load is not reported.
func (c *client) resume(ctx context.Context) error {
	user, err := c.store.Identity()
	if err != nil {
		return err
	}
	if user == "" {
		return errNotLoggedIn
	}
	if err := c.engine.Resume(ctx, tracker.Identity(user)); err != nil {
		if errors.Is(err, tracker.ErrNotAuthenticated) {
			return errSessionExpired
		}
		return err
	}
	c.celebrated = false
	return nil
}

// mutation maps an engine result to a command error.
func mutation(ok bool, err error) error {
	if errors.Is(err, tracker.ErrNotAuthenticated) {
		return errSessionExpired
	}
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("nothing to do")
	}
	return nil
}

func (c *client) notLoaded() error {
	return fmt.Errorf("could not load habits from %s", c.cfg.Server)
}
