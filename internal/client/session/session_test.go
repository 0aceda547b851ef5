package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/qaforum/internal/client/client"
	"github.com/dmitrijs2005/qaforum/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCreds struct {
	mu       sync.Mutex
	token    string
	loadErr  error
	saveErr  error
	clearErr error
}

func (m *memCreds) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.loadErr
}

func (m *memCreds) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
	return nil
}

func (m *memCreds) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return m.clearErr
	}
	m.token = ""
	return nil
}

func (m *memCreds) stored() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

type fakeVerifier struct {
	mu    sync.Mutex
	users map[string]models.Identity
	err   error
	calls int

	entered chan struct{}
	release chan struct{}
}

func (f *fakeVerifier) CheckUser(ctx context.Context, token string) (*models.Identity, error) {
	f.mu.Lock()
	f.calls++
	entered, release := f.entered, f.release
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
		<-release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	id, ok := f.users[token]
	if !ok {
		return nil, &client.ServerError{StatusCode: 401, Message: "Authentication invalid"}
	}
	return &id, nil
}

func (f *fakeVerifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newFixture() (*Store, *memCreds, *fakeVerifier) {
	creds := &memCreds{}
	v := &fakeVerifier{users: map[string]models.Identity{
		"validtoken": {Username: "abe", UserID: 7},
	}}
	return NewStore(creds, v, nil), creds, v
}

func TestStore_LoginWithValidToken(t *testing.T) {
	s, creds, _ := newFixture()

	ok, err := s.Login(context.Background(), "validtoken")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, Session{IsAuthenticated: true, Token: "validtoken", Username: "abe", UserID: 7}, s.Current())
	assert.Equal(t, "validtoken", creds.stored())

	tok, present := s.Credential()
	assert.True(t, present)
	assert.Equal(t, "validtoken", tok)
}

func TestStore_LoginStripsBearerPrefix(t *testing.T) {
	s, creds, _ := newFixture()

	ok, err := s.Login(context.Background(), "  Bearer validtoken ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "validtoken", creds.stored())
}

func TestStore_LoginEmptyToken(t *testing.T) {
	s, _, v := newFixture()

	ok, err := s.Login(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyCredential)
	assert.False(t, ok)
	assert.Zero(t, v.callCount())
}

func TestStore_LoginRejectedKeepsPersistedCredential(t *testing.T) {
	s, creds, _ := newFixture()

	ok, err := s.Login(context.Background(), "stale")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, Session{}, s.Current())
	assert.Equal(t, "stale", creds.stored())
}

func TestStore_LoginPersistFailure(t *testing.T) {
	s, creds, v := newFixture()
	creds.saveErr = errors.New("disk full")

	ok, err := s.Login(context.Background(), "validtoken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist credential")
	assert.False(t, ok)
	assert.Zero(t, v.callCount())
	assert.False(t, s.Current().IsAuthenticated)
}

func TestStore_VerifyUnavailableServer(t *testing.T) {
	s, _, v := newFixture()
	v.err = client.ErrUnavailable

	assert.False(t, s.Verify(context.Background(), "validtoken"))
	assert.False(t, s.Current().IsAuthenticated)
}

func TestStore_VerifyAdoptsAcceptedCredential(t *testing.T) {
	s, _, v := newFixture()
	v.users["othertoken"] = models.Identity{Username: "bea", UserID: 8}
	ctx := context.Background()

	_, err := s.Login(ctx, "validtoken")
	require.NoError(t, err)

	require.True(t, s.Verify(ctx, "othertoken"))

	tok, present := s.Credential()
	assert.True(t, present)
	assert.Equal(t, "othertoken", tok)
	assert.Equal(t, s.Current().Token, tok, "requests carry the verified token")

	assert.False(t, s.Verify(ctx, "stale"))
	tok, _ = s.Credential()
	assert.Equal(t, "othertoken", tok, "a rejected credential is not adopted")
}

func TestStore_VerifyEmptyCredential(t *testing.T) {
	s, _, v := newFixture()

	assert.False(t, s.Verify(context.Background(), ""))
	assert.Zero(t, v.callCount())
}

func TestStore_Initialize(t *testing.T) {
	t.Run("nothing persisted", func(t *testing.T) {
		s, _, v := newFixture()
		require.NoError(t, s.Initialize(context.Background()))
		assert.Equal(t, Session{}, s.Current())
		assert.Zero(t, v.callCount())
		_, ok := s.Credential()
		assert.False(t, ok)
	})

	t.Run("valid credential restored", func(t *testing.T) {
		s, creds, _ := newFixture()
		creds.token = "validtoken"
		require.NoError(t, s.Initialize(context.Background()))
		assert.True(t, s.Current().IsAuthenticated)
		assert.Equal(t, "abe", s.Current().Username)
	})

	t.Run("rejected credential", func(t *testing.T) {
		s, creds, _ := newFixture()
		creds.token = "expired"
		require.NoError(t, s.Initialize(context.Background()))
		assert.False(t, s.Current().IsAuthenticated)
		assert.Equal(t, "expired", creds.stored())
	})

	t.Run("storage failure", func(t *testing.T) {
		s, creds, v := newFixture()
		creds.loadErr = errors.New("locked")
		err := s.Initialize(context.Background())
		require.Error(t, err)
		assert.False(t, s.Current().IsAuthenticated)
		assert.Zero(t, v.callCount())
	})
}

func TestStore_Logout(t *testing.T) {
	s, creds, _ := newFixture()
	ctx := context.Background()
	_, err := s.Login(ctx, "validtoken")
	require.NoError(t, err)

	s.Logout(ctx)

	assert.Equal(t, Session{}, s.Current())
	assert.Empty(t, creds.stored())
	_, ok := s.Credential()
	assert.False(t, ok)
}

func TestStore_LogoutStorageFailureStillSignsOut(t *testing.T) {
	s, creds, _ := newFixture()
	ctx := context.Background()
	_, err := s.Login(ctx, "validtoken")
	require.NoError(t, err)
	creds.clearErr = errors.New("read-only")

	s.Logout(ctx)

	assert.False(t, s.Current().IsAuthenticated)
	_, ok := s.Credential()
	assert.False(t, ok)
}

func TestStore_LogoutDuringVerificationWins(t *testing.T) {
	s, _, v := newFixture()
	v.entered = make(chan struct{})
	v.release = make(chan struct{})

	done := make(chan bool)
	go func() {
		ok, _ := s.Login(context.Background(), "validtoken")
		done <- ok
	}()

	<-v.entered
	s.Logout(context.Background())
	close(v.release)

	assert.False(t, <-done)
	assert.Equal(t, Session{}, s.Current())
}

func TestStore_LaterVerificationWins(t *testing.T) {
	s, _, v := newFixture()
	v.users["other"] = models.Identity{Username: "zed", UserID: 9}
	v.entered = make(chan struct{})
	v.release = make(chan struct{})

	first := make(chan bool)
	go func() { first <- s.Verify(context.Background(), "validtoken") }()
	<-v.entered

	second := make(chan bool)
	go func() { second <- s.Verify(context.Background(), "other") }()
	<-v.entered

	close(v.release)
	firstOK, secondOK := <-first, <-second

	assert.False(t, firstOK)
	assert.True(t, secondOK)
	assert.Equal(t, "zed", s.Current().Username)
}

func TestStore_Subscribe(t *testing.T) {
	s, _, _ := newFixture()
	ctx := context.Background()

	var got []bool
	unsubscribe := s.Subscribe(func(st Session) { got = append(got, st.IsAuthenticated) })

	_, err := s.Login(ctx, "validtoken")
	require.NoError(t, err)
	s.Logout(ctx)
	s.Logout(ctx) // no transition, no callback

	assert.Equal(t, []bool{true, false}, got)

	unsubscribe()
	_, err = s.Login(ctx, "validtoken")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStore_ExpiryHint(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
	}).SignedString([]byte("not-our-secret"))
	require.NoError(t, err)

	s, _, v := newFixture()
	v.users[token] = models.Identity{Username: "abe", UserID: 7}

	ok, err := s.Login(context.Background(), token)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, exp.Equal(s.Current().ExpiresAt))
}

func TestExpiryOf_OpaqueToken(t *testing.T) {
	assert.True(t, expiryOf("validtoken").IsZero())
}
