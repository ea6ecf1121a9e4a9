package service

import (
	"context"
	"sync"

	"github.com/mmcdole/kiosk/internal/domain"
)

// fakeAuth is an AuthGateway with scripted tokens and call counters
type fakeAuth struct {
	mu sync.Mutex

	passwords map[string]string // login -> password
	access    map[string]string // valid access token -> login
	refresh   map[string]string // valid refresh token -> access token it mints

	loginCalls   int
	refreshCalls int
	meCalls      int
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		passwords: map[string]string{"emilys": "emilyspass"},
		access:    map[string]string{},
		refresh:   map[string]string{},
	}
}

func (f *fakeAuth) Login(_ context.Context, login, password string) (*domain.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++

	if pw, ok := f.passwords[login]; !ok || pw != password {
		return nil, &domain.AuthError{Op: "login", Err: domain.ErrInvalidCredentials}
	}
	f.access["acc-"+login] = login
	f.refresh["ref-"+login] = "acc2-" + login
	return &domain.AuthResult{
		Identity:     domain.Identity{ID: "1", Login: login},
		AccessToken:  "acc-" + login,
		RefreshToken: "ref-" + login,
	}, nil
}

func (f *fakeAuth) Refresh(_ context.Context, refreshToken string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++

	next, ok := f.refresh[refreshToken]
	if !ok {
		return "", &domain.AuthError{Op: "refresh", Err: domain.ErrRefreshFailed}
	}
	return next, nil
}

func (f *fakeAuth) CurrentUser(_ context.Context, accessToken string) (*domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++

	login, ok := f.access[accessToken]
	if !ok {
		return nil, &domain.AuthError{Op: "me", Err: domain.ErrUnauthorized}
	}
	return &domain.Identity{ID: "1", Login: login}, nil
}

// recordingNotes captures every Show call
type recordingNotes struct {
	mu    sync.Mutex
	shown []domain.Notification
}

func (r *recordingNotes) Show(text string, kind domain.NotificationKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, domain.Notification{Text: text, Kind: kind, Visible: true})
}

func (r *recordingNotes) all() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notification(nil), r.shown...)
}

// scriptedGateway is a ProductGateway whose calls block until released
type scriptedGateway struct {
	mu      sync.Mutex
	queries []domain.CatalogQuery
	calls   []chan fetchReply
}

type fetchReply struct {
	res domain.CatalogResult
	err error
}

func (g *scriptedGateway) Fetch(ctx context.Context, q domain.CatalogQuery) (domain.CatalogResult, error) {
	ch := make(chan fetchReply, 1)
	g.mu.Lock()
	g.queries = append(g.queries, q)
	g.calls = append(g.calls, ch)
	g.mu.Unlock()

	select {
	case r := <-ch:
		return r.res, r.err
	case <-ctx.Done():
		return domain.CatalogResult{}, ctx.Err()
	}
}

func (g *scriptedGateway) pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *scriptedGateway) reply(i int, res domain.CatalogResult, err error) {
	g.mu.Lock()
	ch := g.calls[i]
	g.mu.Unlock()
	ch <- fetchReply{res: res, err: err}
}

// recordingGateway wraps a gateway and keeps every query it received
type recordingGateway struct {
	next    domain.ProductGateway
	mu      sync.Mutex
	queries []domain.CatalogQuery
}

func (g *recordingGateway) Fetch(ctx context.Context, q domain.CatalogQuery) (domain.CatalogResult, error) {
	g.mu.Lock()
	g.queries = append(g.queries, q)
	g.mu.Unlock()
	return g.next.Fetch(ctx, q)
}

func products(ids ...string) []domain.Product {
	out := make([]domain.Product, len(ids))
	for i, id := range ids {
		out[i] = domain.Product{ID: id, Name: "Item " + id, Price: 1, Vendor: "-", SKU: "SKU-" + id, Rating: 3}
	}
	return out
}
