package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glorpus-work/modpick/pkg/model"
	"github.com/glorpus-work/modpick/pkg/orchestrator"
	mock_session "github.com/glorpus-work/modpick/pkg/session/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	fetcher   *mock_session.MockCatalogFetcher
	installer *mock_session.MockInstaller
	opener    *mock_session.MockOpener
	menu      *mock_session.MockMenu
	slept     []time.Duration
	ctrl      *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mc := gomock.NewController(t)
	f := &fixture{
		fetcher:   mock_session.NewMockCatalogFetcher(mc),
		installer: mock_session.NewMockInstaller(mc),
		opener:    mock_session.NewMockOpener(mc),
		menu:      mock_session.NewMockMenu(mc),
	}
	f.ctrl = NewController(f.fetcher, f.installer, f.opener, f.menu, Options{
		ErrorDelay: 3 * time.Second,
		Sleep:      func(_ context.Context, d time.Duration) { f.slept = append(f.slept, d) },
	})
	return f
}

func sampleCatalog() *model.Catalog {
	return model.NewCatalog([]model.Package{
		{Name: "Monke Map", Version: "2.0.0", Category: "Gameplay", RepositoryPath: "owner/monkemap", Developers: "owner", Dependencies: []string{"Utilla"}},
		{Name: "Utilla", Version: "1.6.9", Category: "Libraries", RepositoryPath: "iDevs/Utilla", Developers: "iDevs"},
		{Name: "ComputerInterface", Version: "1.8.0", Category: "Libraries", RepositoryPath: "ToniMacaroni/ComputerInterface", Developers: "Toni"},
	})
}

func (f *fixture) load(t *testing.T) {
	t.Helper()
	f.fetcher.EXPECT().Fetch(gomock.Any()).Return(sampleCatalog(), nil).Times(1)
	require.True(t, f.ctrl.Show(context.Background()))
}

func TestController_StartsEmpty(t *testing.T) {
	f := newFixture(t)
	s := f.ctrl.Snapshot()
	assert.Equal(t, StateEmpty, s.State)
	assert.Equal(t, 0, s.Cursor)
	assert.False(t, s.HasCurrent)
	assert.False(t, s.Busy)
}

func TestController_ShowFetchesOnce(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	s := f.ctrl.Snapshot()
	assert.Equal(t, StateBrowsing, s.State)
	assert.Equal(t, 3, s.Count)
	require.True(t, s.HasCurrent)
	assert.Equal(t, "Monke Map", s.Current.Name)
	assert.Contains(t, s.Text(), "Monke Map V2.0.0 (Gameplay)")
	assert.Contains(t, s.Text(), "Developers: owner")

	// catalog already loaded: no second fetch
	assert.True(t, f.ctrl.Show(context.Background()))
}

func TestController_CursorClamps(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	assert.True(t, f.ctrl.MoveLeft())
	assert.Equal(t, 0, f.ctrl.Snapshot().Cursor)

	for i := 0; i < 5; i++ {
		f.ctrl.MoveRight()
	}
	s := f.ctrl.Snapshot()
	assert.Equal(t, 2, s.Cursor)
	assert.Equal(t, "ComputerInterface", s.Current.Name)
	assert.Contains(t, s.Text(), "3/3")

	f.ctrl.MoveLeft()
	assert.Equal(t, 1, f.ctrl.Snapshot().Cursor)
}

func TestController_RefreshResetsCursor(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	f.ctrl.MoveRight()
	f.ctrl.MoveRight()

	next := model.NewCatalog([]model.Package{{Name: "Only", Version: "1", Category: "x"}})
	f.fetcher.EXPECT().Fetch(gomock.Any()).Return(next, nil).Times(1)

	assert.True(t, f.ctrl.HandleKey(context.Background(), KeyOption2))
	s := f.ctrl.Snapshot()
	assert.Equal(t, 0, s.Cursor)
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, "Only", s.Current.Name)
}

func TestController_NoCurrentPackageWhileRefreshing(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	f.ctrl.MoveRight()

	started := make(chan struct{})
	release := make(chan struct{})
	next := model.NewCatalog([]model.Package{{Name: "Only", Version: "1", Category: "x"}})
	f.fetcher.EXPECT().Fetch(gomock.Any()).DoAndReturn(func(context.Context) (*model.Catalog, error) {
		close(started)
		<-release
		return next, nil
	}).Times(1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.ctrl.Refresh(context.Background())
	}()
	<-started

	s := f.ctrl.Snapshot()
	assert.Equal(t, StateFetching, s.State)
	assert.True(t, s.Busy)
	assert.False(t, s.HasCurrent)
	assert.Empty(t, s.Current.Name)

	close(release)
	wg.Wait()

	s = f.ctrl.Snapshot()
	assert.Equal(t, StateBrowsing, s.State)
	require.True(t, s.HasCurrent)
	assert.Equal(t, "Only", s.Current.Name)
}

func TestController_FetchFailureReturnsToMenu(t *testing.T) {
	f := newFixture(t)
	f.fetcher.EXPECT().Fetch(gomock.Any()).Return(nil, errors.New("boom")).Times(1)
	f.menu.EXPECT().ReturnToMenu().Times(1)

	var sawError bool
	f.ctrl.opts.Sleep = func(_ context.Context, d time.Duration) {
		// the error screen is visible while we wait
		s := f.ctrl.Snapshot()
		sawError = len(s.Lines) > 0 && s.Lines[0].Kind == LineError && s.Busy
		f.slept = append(f.slept, d)
	}

	assert.True(t, f.ctrl.Show(context.Background()))
	assert.True(t, sawError)
	assert.Equal(t, []time.Duration{3 * time.Second}, f.slept)

	s := f.ctrl.Snapshot()
	assert.Equal(t, StateEmpty, s.State)
	assert.Equal(t, 0, s.Count)
	assert.False(t, s.Busy)
}

func TestController_AnyKeyOnEmptyFetches(t *testing.T) {
	f := newFixture(t)
	f.fetcher.EXPECT().Fetch(gomock.Any()).Return(sampleCatalog(), nil).Times(1)

	assert.True(t, f.ctrl.HandleKey(context.Background(), KeyRight))
	s := f.ctrl.Snapshot()
	assert.Equal(t, StateBrowsing, s.State)
	assert.Equal(t, 0, s.Cursor, "the key that triggered the fetch does not move the cursor")
}

func TestController_ConfirmSuccess(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	report := orchestrator.Report{
		Lines: []orchestrator.Line{
			{Kind: orchestrator.LineInfo, Text: "Extracting ZIP File to plugins.."},
			{Kind: orchestrator.LineSuccess, Text: "Downloaded Dependency: Utilla v1.6.9"},
			{Kind: orchestrator.LineSuccess, Text: "Successfully Downloaded Monke Map!"},
		},
		Installed: []string{"Utilla", "Monke Map"},
	}
	f.installer.EXPECT().Install(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, target model.Package, cat *model.Catalog) (orchestrator.Report, error) {
			assert.Equal(t, "Monke Map", target.Name)
			assert.Equal(t, 3, cat.Len())
			assert.Equal(t, StateInstalling, f.ctrl.Snapshot().State)
			return report, nil
		}).Times(1)

	assert.True(t, f.ctrl.HandleKey(context.Background(), KeyEnter))

	s := f.ctrl.Snapshot()
	assert.Equal(t, StateBrowsing, s.State)
	assert.False(t, s.Busy)
	assert.Contains(t, s.Text(), "Successfully Downloaded Monke Map!")
	assert.Equal(t, LineSuccess, s.Lines[len(s.Lines)-1].Kind)
	assert.Empty(t, f.slept)
}

func TestController_ConfirmFailureBackToBrowsing(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	installErr := &orchestrator.InstallError{Kind: orchestrator.KindDependencyNotFound, Package: "Monke Map", Dependency: "Utilla"}
	report := orchestrator.Report{Lines: []orchestrator.Line{{Kind: orchestrator.LineError, Text: "Could not find dependency: Utilla"}}}
	f.installer.EXPECT().Install(gomock.Any(), gomock.Any(), gomock.Any()).Return(report, installErr).Times(1)

	assert.True(t, f.ctrl.Confirm(context.Background()))

	s := f.ctrl.Snapshot()
	assert.Equal(t, StateBrowsing, s.State)
	assert.Equal(t, 3, s.Count, "catalog survives an install failure")
	assert.Contains(t, s.Text(), "Could not find dependency: Utilla")
	assert.Equal(t, LineError, s.Lines[len(s.Lines)-1].Kind)
	assert.Equal(t, []time.Duration{3 * time.Second}, f.slept)
}

func TestController_InputDroppedWhileBusy(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	started := make(chan struct{})
	release := make(chan struct{})
	f.installer.EXPECT().Install(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, model.Package, *model.Catalog) (orchestrator.Report, error) {
			close(started)
			<-release
			return orchestrator.Report{}, nil
		}).Times(1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.ctrl.Confirm(context.Background())
	}()
	<-started

	before := f.ctrl.Snapshot()
	require.True(t, before.Busy)

	ctx := context.Background()
	assert.False(t, f.ctrl.MoveRight())
	assert.False(t, f.ctrl.MoveLeft())
	assert.False(t, f.ctrl.Confirm(ctx))
	assert.False(t, f.ctrl.Refresh(ctx))
	assert.False(t, f.ctrl.Back())
	assert.False(t, f.ctrl.OpenSelected())
	for _, k := range []Key{KeyLeft, KeyRight, KeyEnter, KeyOption1, KeyOption2, KeyBack} {
		assert.False(t, f.ctrl.HandleKey(ctx, k))
	}
	assert.Equal(t, before, f.ctrl.Snapshot())

	close(release)
	wg.Wait()
	assert.False(t, f.ctrl.Busy())
}

func TestController_OpenSelected(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	f.ctrl.MoveRight()

	f.opener.EXPECT().Open("https://github.com/iDevs/Utilla").Return(nil).Times(1)
	assert.True(t, f.ctrl.HandleKey(context.Background(), KeyOption1))

	f.opener.EXPECT().Open(gomock.Any()).Return(errors.New("no browser")).Times(1)
	assert.True(t, f.ctrl.OpenSelected())
	s := f.ctrl.Snapshot()
	assert.Equal(t, LineError, s.Lines[len(s.Lines)-1].Kind)
}

func TestController_Back(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	f.ctrl.MoveRight()

	f.menu.EXPECT().ReturnToMenu().Times(1)
	assert.True(t, f.ctrl.HandleKey(context.Background(), KeyBack))

	s := f.ctrl.Snapshot()
	assert.Equal(t, StateEmpty, s.State)
	assert.Equal(t, 0, s.Cursor)
	assert.Equal(t, 0, s.Count)
	assert.Empty(t, s.Lines)
}

func TestController_EmptyCatalogAfterFetch(t *testing.T) {
	f := newFixture(t)
	f.fetcher.EXPECT().Fetch(gomock.Any()).Return(model.NewCatalog(nil), nil).Times(1)

	require.True(t, f.ctrl.Show(context.Background()))
	s := f.ctrl.Snapshot()
	assert.Equal(t, 0, s.Cursor)
	assert.False(t, s.HasCurrent)
	assert.False(t, f.ctrl.Confirm(context.Background()))
}

func TestController_OnChange(t *testing.T) {
	var calls int
	mc := gomock.NewController(t)
	fetcher := mock_session.NewMockCatalogFetcher(mc)
	fetcher.EXPECT().Fetch(gomock.Any()).Return(sampleCatalog(), nil)

	c := NewController(fetcher, nil, nil, nil, Options{OnChange: func() { calls++ }})
	c.Show(context.Background())
	assert.GreaterOrEqual(t, calls, 2, "fetch start and fetch result are both announced")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "empty", StateEmpty.String())
	assert.Equal(t, "fetching", StateFetching.String())
	assert.Equal(t, "browsing", StateBrowsing.String())
	assert.Equal(t, "installing", StateInstalling.String())
	assert.Equal(t, "State(9)", State(9).String())
}
