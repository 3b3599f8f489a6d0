package agent_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kvirtue/gemini-computer-use/api/schemas"
)

// fakeSurface records every device operation in call order.
type fakeSurface struct {
	mu  sync.Mutex
	ops []string

	url  string
	shot []byte

	// failNavigateAfter fails the nth navigate call (1-based); 0 disables.
	failNavigateAfter int
	navigateCalls     int

	closeCalls int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		url:  "https://www.google.com/",
		shot: []byte("png"),
	}
}

func (f *fakeSurface) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, op)
}

func (f *fakeSurface) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

func (f *fakeSurface) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	f.navigateCalls++
	fail := f.failNavigateAfter > 0 && f.navigateCalls >= f.failNavigateAfter
	f.mu.Unlock()

	if fail {
		return errors.New("net::ERR_NAME_NOT_RESOLVED")
	}
	f.record("navigate(" + url + ")")
	f.mu.Lock()
	f.url = url
	f.mu.Unlock()
	return nil
}

func (f *fakeSurface) Click(ctx context.Context, x, y int) error {
	f.record(fmt.Sprintf("click(%d,%d)", x, y))
	return nil
}

func (f *fakeSurface) Hover(ctx context.Context, x, y int) error {
	f.record(fmt.Sprintf("hover(%d,%d)", x, y))
	return nil
}

func (f *fakeSurface) Type(ctx context.Context, text string) error {
	f.record("type(" + text + ")")
	return nil
}

func (f *fakeSurface) Key(ctx context.Context, keys string) error {
	f.record("key(" + keys + ")")
	return nil
}

func (f *fakeSurface) Scroll(ctx context.Context, x, y, deltaX, deltaY int) error {
	f.record(fmt.Sprintf("scroll(%d,%d,%d,%d)", x, y, deltaX, deltaY))
	return nil
}

func (f *fakeSurface) Drag(ctx context.Context, fromX, fromY, toX, toY int) error {
	f.record(fmt.Sprintf("drag(%d,%d,%d,%d)", fromX, fromY, toX, toY))
	return nil
}

func (f *fakeSurface) GoBack(ctx context.Context) error {
	f.record("goBack")
	return nil
}

func (f *fakeSurface) GoForward(ctx context.Context) error {
	f.record("goForward")
	return nil
}

func (f *fakeSurface) WaitIdle(ctx context.Context, timeout time.Duration) error {
	return nil
}

func (f *fakeSurface) Screenshot(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shot, nil
}

func (f *fakeSurface) CurrentURL(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url, nil
}

func (f *fakeSurface) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	return nil
}

func (f *fakeSurface) closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeCalls
}

// fakeStore records every saved run and optionally fails the save.
type fakeStore struct {
	saved   []*schemas.RunResult
	saveErr error
}

func (s *fakeStore) SaveRun(ctx context.Context, result *schemas.RunResult) error {
	s.saved = append(s.saved, result)
	return s.saveErr
}

// scriptedModel replays a fixed sequence of turns, optionally failing at one
// call index (1-based). It keeps every history it was shown for assertions.
type scriptedModel struct {
	turns     []*schemas.ModelTurn
	failAt    int
	calls     int
	histories [][]schemas.Turn
}

func (m *scriptedModel) Converse(ctx context.Context, history []schemas.Turn) (*schemas.ModelTurn, error) {
	m.calls++
	m.histories = append(m.histories, append([]schemas.Turn(nil), history...))

	if m.failAt > 0 && m.calls == m.failAt {
		return nil, errors.New("model unavailable")
	}

	idx := m.calls - 1
	if idx >= len(m.turns) {
		idx = len(m.turns) - 1
	}
	return m.turns[idx], nil
}

func actionTurn(actions ...schemas.ProposedAction) *schemas.ModelTurn {
	return &schemas.ModelTurn{Actions: actions}
}

func proposed(req schemas.ActionRequest) schemas.ProposedAction {
	return schemas.ProposedAction{
		Name:    string(req.Kind()),
		Request: req,
	}
}
