package store

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modulesJSON = `[
	{"id": 1, "name": "Salud", "order": 1, "xp_required": 0, "state": "completed"},
	{"id": 2, "name": "Intelecto", "order": 2, "xp_required": 100, "state": "unlocked"},
	{"id": 3, "name": "Carrera", "order": 3, "xp_required": 200, "state": "locked"},
	{"id": 4, "name": "Finanzas", "order": 4, "xp_required": 300, "state": "locked"}
]`

const missionsJSON = `[
	{"id": "m1", "module": {"id": 1, "name": "Salud", "state": "completed"}, "title": "Caminar", "xp_reward": 50},
	{"id": "m2", "module": {"id": 2, "name": "Intelecto", "state": "unlocked"}, "title": "Leer", "xp_reward": 30},
	{"id": "m3", "module": {"id": 3, "name": "Carrera", "state": "locked"}, "title": "CV", "xp_reward": 80}
]`

func newModules(h *harness) *Modules {
	return NewModules(h.client.Modules, h.client.Missions, h.client.Progress, h.session, nil, discardLogger())
}

func TestFetchModules_AndGetters(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, `{"count":4,"results":`+modulesJSON+`}`))
	h.backend.on(http.MethodGet, "/missions/", reply(http.StatusOK, missionsJSON))
	m := newModules(h)
	ctx := context.Background()

	require.NoError(t, m.FetchModules(ctx))
	require.NoError(t, m.FetchMissions(ctx))

	assert.Len(t, m.Modules(), 4)
	assert.Len(t, m.Missions(), 3)

	var unlocked []int
	for _, mod := range m.UnlockedModules() {
		unlocked = append(unlocked, mod.ID)
	}
	assert.Equal(t, []int{1, 2}, unlocked)

	var available []string
	for _, ms := range m.AvailableMissions() {
		available = append(available, ms.ID)
	}
	assert.Equal(t, []string{"m1", "m2"}, available)

	next := m.NextModule()
	require.NotNil(t, next)
	assert.Equal(t, 3, next.ID)
}

func TestNextModule_NoneLocked(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, `[{"id":1,"state":"unlocked"}]`))
	m := newModules(h)

	require.NoError(t, m.FetchModules(context.Background()))
	assert.Nil(t, m.NextModule())
	assert.Empty(t, m.AvailableMissions())
}

func TestFetchModules_Failure(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodGet, "/modules/", reply(http.StatusInternalServerError, ``))
	m := newModules(h)

	require.Error(t, m.FetchModules(context.Background()))
	assert.Equal(t, "Error al cargar módulos", m.Err())
	assert.False(t, m.Loading())
}

func TestFetchMissions_Failure(t *testing.T) {
	h := newHarness(t)
	m := newModules(h)
	h.backend.on(http.MethodGet, "/missions/", reply(http.StatusForbidden, `{"detail":"You do not have permission to perform this action."}`))

	require.Error(t, m.FetchMissions(context.Background()))
	assert.Equal(t, "You do not have permission to perform this action.", m.Err())
}

func TestFetchModules_LoadingOnlyWhileRunning(t *testing.T) {
	h := newHarness(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	h.backend.on(http.MethodGet, "/modules/", func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		reply(http.StatusOK, modulesJSON)(w, r)
	})
	m := newModules(h)

	assert.False(t, m.Loading())
	done := make(chan error, 1)
	go func() { done <- m.FetchModules(context.Background()) }()

	<-entered
	assert.True(t, m.Loading())
	close(release)
	require.NoError(t, <-done)
	assert.False(t, m.Loading())
}

func TestUnlockModule_RefetchesModulesAndMissions(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	h.backend.on(http.MethodPost, "/modules/3/unlock/",
		reply(http.StatusOK, `{"module":{"id":3,"name":"Carrera","state":"unlocked"},"state":"unlocked","experience_points":0}`))
	h.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, modulesJSON))
	h.backend.on(http.MethodGet, "/missions/", reply(http.StatusOK, missionsJSON))
	m := newModules(h)

	require.NoError(t, m.UnlockModule(context.Background(), 3))
	assert.Equal(t, 1, h.backend.count(http.MethodPost, "/modules/3/unlock/"))
	assert.Equal(t, 1, h.backend.count(http.MethodGet, "/modules/"))
	assert.Equal(t, 1, h.backend.count(http.MethodGet, "/missions/"))
	assert.False(t, m.Loading())
}

func TestUnlockModule_NotEnoughXP(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	h.backend.on(http.MethodPost, "/modules/4/unlock/", reply(http.StatusBadRequest, `{"error":"Not enough XP to unlock this module"}`))
	m := newModules(h)

	require.Error(t, m.UnlockModule(context.Background(), 4))
	assert.Equal(t, "Not enough XP to unlock this module", m.Err())
	assert.Zero(t, h.backend.count(http.MethodGet, "/modules/"))
}

func TestCompleteMission_RefetchesModulesAndProfileOnce(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	h.backend.on(http.MethodPost, "/missions/m1/complete/",
		reply(http.StatusOK, `{"mission":{"id":"m1","module":{"id":1},"title":"Caminar","xp_reward":50},"state":"completed"}`))
	h.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, modulesJSON))
	h.backend.on(http.MethodGet, "/auth/me/", reply(http.StatusOK, `{"user":{"id":1,"username":"alice"},"experience_points":170,"current_level":2}`))
	m := newModules(h)

	require.NoError(t, m.CompleteMission(context.Background(), "m1"))
	assert.Equal(t, 1, h.backend.count(http.MethodGet, "/modules/"))
	assert.Equal(t, 1, h.backend.count(http.MethodGet, "/auth/me/"))
	assert.Equal(t, 170, h.session.UserXP())
	assert.Empty(t, m.Err())
}

func TestCompleteMission_Failure(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	h.backend.on(http.MethodPost, "/missions/m9/complete/", reply(http.StatusInternalServerError, ``))
	m := newModules(h)

	require.Error(t, m.CompleteMission(context.Background(), "m9"))
	assert.Equal(t, "Error al completar misión", m.Err())
	assert.Zero(t, h.backend.count(http.MethodGet, "/modules/"))
	assert.Zero(t, h.backend.count(http.MethodGet, "/auth/me/"))
}

func TestSetCurrentModule(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, modulesJSON))
	m := newModules(h)
	require.NoError(t, m.FetchModules(context.Background()))

	_, ok := m.SetCurrentModule(99)
	assert.False(t, ok)
	assert.Nil(t, m.CurrentModule())

	mod, ok := m.SetCurrentModule(2)
	require.True(t, ok)
	assert.Equal(t, "Intelecto", mod.Name)
	require.NotNil(t, m.CurrentModule())
	assert.Equal(t, "Intelecto", m.CurrentModule().Name)
}

func TestSetCurrentModule_CopySurvivesRefetch(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, modulesJSON))
	m := newModules(h)
	require.NoError(t, m.FetchModules(context.Background()))

	mod, ok := m.SetCurrentModule(2)
	require.True(t, ok)

	// A refetch that no longer lists the module clears the selection.
	h.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, `[]`))
	require.NoError(t, m.FetchModules(context.Background()))

	assert.Nil(t, m.CurrentModule())
	assert.Equal(t, 2, mod.ID)
	assert.Equal(t, "Intelecto", mod.Name)
}

func TestFetchModuleDetail(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodGet, "/progress/module/2/", reply(http.StatusOK, `{
		"progress": {"module": {"id": 2}, "state": "unlocked", "experience_points": 40},
		"missions": [{"mission": {"id": "m2"}, "state": "active"}],
		"streak": {"module": {"id": 2}, "current_streak": 3, "longest_streak": 5}
	}`))
	m := newModules(h)

	_, ok := m.Detail(2)
	assert.False(t, ok)

	require.NoError(t, m.FetchModuleDetail(context.Background(), 2))
	d, ok := m.Detail(2)
	require.True(t, ok)
	assert.Equal(t, 40, d.Progress.ExperiencePoints)
	assert.Equal(t, 3, d.Streak.CurrentStreak)
	require.Len(t, d.Missions, 1)
}

func TestFetchOverview(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodGet, "/progress/overview/", reply(http.StatusOK,
		`{"total_xp":320,"level":4,"modules_unlocked":2,"missions_completed":5,"achievements_earned":1,"current_streaks":{"1":3}}`))
	m := newModules(h)

	assert.Nil(t, m.Overview())
	require.NoError(t, m.FetchOverview(context.Background()))
	o := m.Overview()
	require.NotNil(t, o)
	assert.Equal(t, 320, o.TotalXP)
	assert.Equal(t, 3, o.CurrentStreaks["1"])
}
