package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"math"

	"github.com/dmitrijs2005/qaforum/internal/client/client"
	"github.com/dmitrijs2005/qaforum/internal/client/config"
	"github.com/dmitrijs2005/qaforum/internal/client/confirm"
	"github.com/dmitrijs2005/qaforum/internal/client/guard"
	"github.com/dmitrijs2005/qaforum/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/qaforum/internal/client/services"
	"github.com/dmitrijs2005/qaforum/internal/client/session"
	"github.com/dmitrijs2005/qaforum/internal/filex"
	"github.com/dmitrijs2005/qaforum/internal/logging"
	"github.com/microcosm-cc/bluemonday"

	_ "modernc.org/sqlite"
)

// App holds the wired client: local storage, session, guard, services and
// the confirmation gate, plus the terminal it talks to.
type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB

	sessions *session.Store
	creds    *session.MetadataCredentials
	guard    *guard.Guard
	auth     services.AuthService
	forum    *services.Forum
	gate     *confirm.Gate

	reader   *bufio.Reader
	in       io.Reader
	out      io.Writer
	sanitize *bluemonday.Policy

	// openQuestion is the question last shown with "show".
	openQuestion int64
}

// NewApp opens the local database and wires every component. in and out are
// the user's terminal.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	dir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	c.DataDir = dir

	db, err := client.InitDatabase(ctx, c.DBPath())
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	policy, err := services.ParsePolicy(c.AuthExpiredPolicy)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var store *session.Store
	api, err := client.NewHTTPClient(c.ServerURL,
		client.CredentialFunc(func() (string, bool) { return store.Credential() }),
		client.WithTimeout(c.RequestTimeout),
		client.WithRateLimit(c.RequestsPerSecond, burst(c.RequestsPerSecond)),
		client.WithLogger(log.With("component", "api")),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	creds := session.NewMetadataCredentials(metadata.NewSQLiteRepository(db))
	store = session.NewStore(creds, api, log)

	a := &App{
		config:   c,
		log:      log,
		db:       db,
		sessions: store,
		creds:    creds,
		guard:    guard.New(store),
		auth:     services.NewAuthService(api, store, log),
		forum:    services.NewForum(api, store, policy, log),
		reader:   bufio.NewReader(in),
		in:       in,
		out:      out,
		sanitize: bluemonday.StrictPolicy(),
	}
	a.gate = confirm.NewGate(map[confirm.Kind]confirm.Action{
		confirm.Question: func(ctx context.Context, t confirm.Target) error {
			return a.forum.DeleteQuestion(ctx, t.ID)
		},
		confirm.Answer: func(ctx context.Context, t confirm.Target) error {
			return a.forum.DeleteAnswer(ctx, t.ID)
		},
		confirm.Logout: func(ctx context.Context, _ confirm.Target) error {
			a.auth.Logout(ctx)
			return nil
		},
	})
	return a, nil
}

func burst(rps float64) int {
	return max(1, int(math.Ceil(rps)))
}

// Start restores the persisted session. A server that cannot be reached only
// means the user starts signed out.
func (a *App) Start(ctx context.Context) error {
	if err := a.sessions.Initialize(ctx); err != nil {
		return err
	}
	a.welcome()
	return nil
}

func (a *App) Close() error {
	a.guard.Close()
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Current().IsAuthenticated
}

func (a *App) navigate(v guard.View) guard.Decision {
	return a.guard.Navigate(v)
}

func (a *App) status() string {
	s := "guest"
	if st := a.sessions.Current(); st.IsAuthenticated {
		s = st.Username
	}
	if p, ok := a.gate.Snapshot(); ok {
		s += fmt.Sprintf(", confirm %s?", p.Target)
	}
	return s
}

func (a *App) welcome() {
	name := "Guest"
	if st := a.sessions.Current(); st.IsAuthenticated {
		name = st.Username
	}
	fmt.Fprintf(a.out, "Welcome, %s\n", name)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
