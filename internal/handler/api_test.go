package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestDashboardPage(t *testing.T) {
	b := newBrowser(t)
	b.signIn()
	b.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, modulesJSON))
	b.backend.on(http.MethodGet, "/missions/", reply(http.StatusOK, missionsJSON))
	b.backend.on(http.MethodGet, "/wellness-survey/results/",
		reply(http.StatusOK, `{"values":[10,20,30,40,50,60,70,80]}`))

	resp, body := b.do(http.MethodGet, "/dashboard?area=Finanzas", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "dashboard", gjson.Get(body, "data.route.name").String())
	assert.True(t, gjson.Get(body, "data.session.authenticated").Bool())

	dash := gjson.Get(body, "data.dashboard")
	assert.Equal(t, int64(2), dash.Get("modules.#").Int())
	assert.Equal(t, "Salud", dash.Get("unlocked_modules.0.name").String())
	assert.Equal(t, int64(1), dash.Get("available_missions.#").Int())
	assert.Equal(t, "m1", dash.Get("available_missions.0.id").String())
	assert.Equal(t, "Finanzas", dash.Get("next_module.name").String())
	assert.Equal(t, "[10,20,30,40,50,60,70,80]", dash.Get("radar.series.0.data.0.value").Raw)
	assert.True(t, dash.Get(`constellations.#(name=="Finanzas").active`).Bool())
	assert.False(t, dash.Get("errors").Exists())
}

func TestDashboardPage_RendersWithFailures(t *testing.T) {
	b := newBrowser(t)
	b.signIn()
	b.backend.on(http.MethodGet, "/missions/", reply(http.StatusOK, `[]`))
	b.backend.on(http.MethodGet, "/modules/", reply(http.StatusInternalServerError, `oops`))
	b.backend.on(http.MethodGet, "/wellness-survey/results/", reply(http.StatusInternalServerError, `oops`))

	resp, body := b.do(http.MethodGet, "/dashboard", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	errs := gjson.Get(body, "data.dashboard.errors").Array()
	require.Len(t, errs, 2)
	assert.Equal(t, "Error al cargar módulos", errs[0].String())
	assert.Equal(t, "Error al cargar radar", errs[1].String())
	assert.Equal(t, "[0,0,0,0,0,0,0,0]", gjson.Get(body, "data.dashboard.radar.series.0.data.0.value").Raw)
}

func TestModulePage(t *testing.T) {
	b := newBrowser(t)
	b.signIn()
	b.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, modulesJSON))
	b.backend.on(http.MethodGet, "/progress/module/1/", reply(http.StatusOK, `{
		"progress": {"module": {"id": 1, "name": "Salud"}, "state": "unlocked", "experience_points": 40},
		"missions": [],
		"streak": {"module": {"id": 1, "name": "Salud"}, "current_streak": 3, "longest_streak": 5}
	}`))

	resp, body := b.do(http.MethodGet, "/modules/1", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "module", gjson.Get(body, "data.route.name").String())
	assert.Equal(t, "1", gjson.Get(body, "data.route.param").String())
	assert.Equal(t, "Salud", gjson.Get(body, "data.module.module.name").String())
	assert.Equal(t, int64(40), gjson.Get(body, "data.module.detail.progress.experience_points").Int())
	assert.Equal(t, int64(3), gjson.Get(body, "data.module.detail.streak.current_streak").Int())
}

func TestModulePage_UnknownModule(t *testing.T) {
	b := newBrowser(t)
	b.signIn()
	b.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, modulesJSON))

	for _, path := range []string{"/modules/99", "/modules/abc"} {
		resp, body := b.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Equal(t, "not-found", gjson.Get(body, "data.route.name").String(), path)
	}
}

func TestListModules(t *testing.T) {
	b := newBrowser(t)
	b.signIn()
	b.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, `{"count":2,"results":`+modulesJSON+`}`))

	resp, body := b.do(http.MethodGet, "/api/modules", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(2), gjson.Get(body, "data.modules.#").Int())
	assert.Equal(t, int64(1), gjson.Get(body, "data.unlocked_modules.#").Int())
	assert.Equal(t, int64(2), gjson.Get(body, "data.next_module.id").Int())
}

func TestUnlockModule(t *testing.T) {
	b := newBrowser(t)
	b.signIn()
	b.backend.on(http.MethodPost, "/modules/2/unlock/", reply(http.StatusOK,
		`{"module":{"id":2,"name":"Finanzas"},"state":"unlocked","experience_points":0}`))
	b.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, modulesJSON))
	b.backend.on(http.MethodGet, "/missions/", reply(http.StatusOK, missionsJSON))

	resp, body := b.do(http.MethodPost, "/api/modules/2/unlock", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(2), gjson.Get(body, "data.modules.#").Int())
	assert.Equal(t, 1, b.backend.count(http.MethodGet, "/modules/"))
	assert.Equal(t, 1, b.backend.count(http.MethodGet, "/missions/"))

	_, toasts := b.do(http.MethodGet, "/api/toasts", "")
	assert.Equal(t, "success", gjson.Get(toasts, "data.0.type").String())
	assert.Equal(t, toastModuleUnlocked, gjson.Get(toasts, "data.0.message").String())
}

func TestUnlockModule_Forbidden(t *testing.T) {
	b := newBrowser(t)
	b.signIn()
	b.backend.on(http.MethodPost, "/modules/2/unlock/",
		reply(http.StatusForbidden, `{"detail":"Not enough XP to unlock this module"}`))

	resp, body := b.do(http.MethodPost, "/api/modules/2/unlock", "")

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", gjson.Get(body, "error.code").String())
	assert.Equal(t, "Not enough XP to unlock this module", gjson.Get(body, "error.message").String())
	assert.Zero(t, b.backend.count(http.MethodGet, "/modules/"))
}

func TestUnlockModule_InvalidID(t *testing.T) {
	b := newBrowser(t)
	b.signIn()

	resp, body := b.do(http.MethodPost, "/api/modules/zero/unlock", "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_PARAMETER", gjson.Get(body, "error.code").String())
}

func TestCompleteMission_RefreshesModulesAndProfileOnce(t *testing.T) {
	b := newBrowser(t)
	b.signIn()
	b.backend.on(http.MethodPost, "/missions/m1/complete/", reply(http.StatusOK,
		`{"mission":{"id":"m1","module":{"id":1},"title":"Caminar","xp_reward":10},"state":"completed"}`))
	b.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, modulesJSON))

	resp, body := b.do(http.MethodPost, "/api/missions/m1/complete", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, b.backend.count(http.MethodGet, "/modules/"))
	assert.Equal(t, 1, b.backend.count(http.MethodGet, "/auth/me/"))
	assert.True(t, gjson.Get(body, "data.session.authenticated").Bool())
	assert.Equal(t, int64(2), gjson.Get(body, "data.modules.modules.#").Int())
}

func TestCompleteMission_ServerErrorUsesFallback(t *testing.T) {
	b := newBrowser(t)
	b.signIn()
	b.backend.on(http.MethodPost, "/missions/m1/complete/", reply(http.StatusInternalServerError, `<html>`))

	resp, body := b.do(http.MethodPost, "/api/missions/m1/complete", "")

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Error al completar misión", gjson.Get(body, "error.message").String())
}

func TestProgressOverview(t *testing.T) {
	b := newBrowser(t)
	b.signIn()
	b.backend.on(http.MethodGet, "/progress/overview/", reply(http.StatusOK,
		`{"total_xp":120,"level":2,"modules_unlocked":1,"missions_completed":3,"achievements_earned":0,"current_streaks":{"1":3}}`))

	_, body := b.do(http.MethodGet, "/api/progress/overview", "")

	assert.Equal(t, int64(120), gjson.Get(body, "data.total_xp").Int())
	assert.Equal(t, int64(3), gjson.Get(body, "data.current_streaks.1").Int())
}

func TestCreateHabit(t *testing.T) {
	b := newBrowser(t)
	b.signIn()
	b.backend.on(http.MethodPost, "/habits/", reply(http.StatusCreated, `{"id":7,"nombre":"Leer","dificultad":"media"}`))
	b.backend.on(http.MethodGet, "/habits/", reply(http.StatusOK, `[{"id":7,"nombre":"Leer","dificultad":"media"}]`))

	resp, body := b.do(http.MethodPost, "/api/habits", `{"nombre":"Leer","dificultad":"media"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Leer", gjson.Get(body, "data.0.nombre").String())
	assert.JSONEq(t, `{"nombre":"Leer","dificultad":"media"}`, b.backend.body(http.MethodPost, "/habits/"))
}

func TestCreateHabit_ValidationStopsRequest(t *testing.T) {
	b := newBrowser(t)
	b.signIn()

	resp, body := b.do(http.MethodPost, "/api/habits", `{"nombre":"","dificultad":"media"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", gjson.Get(body, "error.code").String())
	assert.True(t, gjson.Get(body, "error.fields.nombre").Exists())
	assert.Zero(t, b.backend.count(http.MethodPost, "/habits/"))
}

func TestUpdateHabit(t *testing.T) {
	b := newBrowser(t)
	b.signIn()
	b.backend.on(http.MethodPatch, "/habits/7/", reply(http.StatusOK, `{"id":7,"nombre":"Leer","dificultad":"media","estrellas":3}`))
	b.backend.on(http.MethodGet, "/habits/", reply(http.StatusOK, `[{"id":7,"nombre":"Leer","dificultad":"media","estrellas":3}]`))

	resp, body := b.do(http.MethodPatch, "/api/habits/7", `{"estrellas":3}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(3), gjson.Get(body, "data.0.estrellas").Int())
	assert.JSONEq(t, `{"estrellas":3}`, b.backend.body(http.MethodPatch, "/habits/7/"))
}

func TestSurvey_DraftThenSave(t *testing.T) {
	b := newBrowser(t)
	b.signIn()
	b.backend.on(http.MethodPost, "/wellness-survey/answers/", reply(http.StatusCreated, `{}`))

	resp, body := b.do(http.MethodPut, "/api/survey/answers/1", `{"area":"Salud","value":80}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(80), gjson.Get(body, "data.answers.0.value").Int())

	resp, _ = b.do(http.MethodPost, "/api/survey/answers", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"question_id":1,"area":"Salud","value":80}]`,
		b.backend.body(http.MethodPost, "/wellness-survey/answers/"))
}

func TestSurvey_SaveRejectsOutOfRange(t *testing.T) {
	b := newBrowser(t)
	b.signIn()

	resp, body := b.do(http.MethodPost, "/api/survey/answers",
		`{"answers":[{"question_id":1,"area":"Salud","value":130}]}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", gjson.Get(body, "error.code").String())
	assert.Zero(t, b.backend.count(http.MethodPost, "/wellness-survey/answers/"))
}

func TestSurvey_Session(t *testing.T) {
	b := newBrowser(t)
	b.signIn()
	b.backend.on(http.MethodGet, "/wellness-survey/session/", reply(http.StatusOK, `{"id":1,"current_step":3,"is_completed":false}`))
	b.backend.on(http.MethodPut, "/wellness-survey/session/", reply(http.StatusOK, `{"id":1,"current_step":4,"is_completed":true}`))

	_, body := b.do(http.MethodGet, "/api/survey/session", "")
	assert.Equal(t, int64(3), gjson.Get(body, "data.current_step").Int())

	_, body = b.do(http.MethodPut, "/api/survey/session", `{"current_step":4,"is_completed":true}`)
	assert.Equal(t, int64(4), gjson.Get(body, "data.current_step").Int())
	assert.True(t, gjson.Get(body, "data.is_completed").Bool())
}

func TestSurvey_Questions(t *testing.T) {
	b := newBrowser(t)
	b.signIn()
	b.backend.on(http.MethodGet, "/wellness-survey/questions/", reply(http.StatusOK, `[
		{"id":2,"area":"Finanzas","text":"b","order":2},
		{"id":1,"area":"Salud","text":"a","order":1}
	]`))

	_, body := b.do(http.MethodGet, "/api/survey/questions", "")
	assert.Equal(t, int64(1), gjson.Get(body, "data.0.id").Int())
	assert.Equal(t, int64(2), gjson.Get(body, "data.1.id").Int())
}

func TestRadar(t *testing.T) {
	b := newBrowser(t)
	b.signIn()
	b.backend.on(http.MethodGet, "/wellness-survey/results/", reply(http.StatusOK, `{"values":[1,2,3,4,5,6,7,8]}`))

	resp, body := b.do(http.MethodGet, "/api/radar", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[1,2,3,4,5,6,7,8]", gjson.Get(body, "data.values").Raw)
	assert.Equal(t, "Progreso Vital", gjson.Get(body, "data.option.series.0.name").String())
	assert.False(t, gjson.Get(body, "data.error").Exists())
}

func TestRadar_FailureGivesZeros(t *testing.T) {
	b := newBrowser(t)
	b.signIn()
	b.backend.on(http.MethodGet, "/wellness-survey/results/", reply(http.StatusServiceUnavailable, ``))

	resp, body := b.do(http.MethodGet, "/api/radar", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[0,0,0,0,0,0,0,0]", gjson.Get(body, "data.values").Raw)
	assert.Equal(t, "Error al cargar radar", gjson.Get(body, "data.error").String())

	_, toasts := b.do(http.MethodGet, "/api/toasts", "")
	assert.Equal(t, "Error al cargar radar", gjson.Get(toasts, "data.0.message").String())
}

func TestUpdateProfile(t *testing.T) {
	b := newBrowser(t)
	b.signIn()
	b.backend.on(http.MethodPatch, "/auth/me/", reply(http.StatusOK,
		`{"user":{"id":1,"username":"alice","email":"new@example.com"},"experience_points":120,"current_level":2}`))

	resp, body := b.do(http.MethodPatch, "/api/session/profile", `{"email":"new@example.com"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "new@example.com", gjson.Get(body, "data.user.user.email").String())
}
