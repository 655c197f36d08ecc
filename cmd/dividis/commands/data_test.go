package commands

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const (
	modulesJSON = `[
		{"id":1,"name":"Salud","icon":"❤️","order":1,"xp_required":0,"state":"unlocked"},
		{"id":2,"name":"Finanzas","icon":"💰","order":2,"xp_required":100,"state":"locked"}
	]`

	missionsJSON = `[
		{"id":"m1","module":{"id":1,"name":"Salud","state":"unlocked"},"title":"Caminar","xp_reward":10},
		{"id":"m2","module":{"id":2,"name":"Finanzas","state":"locked"},"title":"Ahorrar","xp_reward":20}
	]`

	questionsJSON = `[
		{"id":2,"area":"Personalidad","text":"¿Te conoces?","order":2},
		{"id":1,"area":"Salud","text":"¿Duermes bien?","order":1}
	]`
)

func TestModules_List(t *testing.T) {
	term := newTerminal(t)
	term.signIn()
	term.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, modulesJSON))

	out, _, err := term.run("modules")

	require.NoError(t, err)
	assert.Contains(t, out, "Salud")
	assert.Contains(t, out, "locked")
	assert.Contains(t, out, "Siguiente: Finanzas (100 XP)")
}

func TestModules_JSON(t *testing.T) {
	term := newTerminal(t)
	term.signIn()
	term.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, modulesJSON))

	out, _, err := term.run("--json", "modules")

	require.NoError(t, err)
	assert.Equal(t, int64(2), gjson.Get(out, "modules.#").Int())
	assert.Equal(t, "Finanzas", gjson.Get(out, "next_module.name").String())
}

func TestModules_FailureShowsMessage(t *testing.T) {
	term := newTerminal(t)
	term.signIn()
	term.backend.on(http.MethodGet, "/modules/", reply(http.StatusInternalServerError, ``))

	_, stderr, err := term.run("modules")

	require.Error(t, err)
	assert.Equal(t, "Error al cargar módulos", err.Error())
	assert.Contains(t, stderr, "Error al cargar módulos")
}

func TestModules_Detail(t *testing.T) {
	term := newTerminal(t)
	term.signIn()
	term.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, modulesJSON))
	term.backend.on(http.MethodGet, "/progress/module/1/", reply(http.StatusOK, `{
		"progress":{"module":{"id":1},"state":"unlocked","experience_points":40},
		"missions":[{"mission":{"id":"m1","title":"Caminar","xp_reward":10},"state":"active"}],
		"streak":{"module":{"id":1},"current_streak":3,"longest_streak":5}
	}`))

	out, _, err := term.run("modules", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "Estado: unlocked · 40 XP · racha 3 (máx. 5)")
	assert.Contains(t, out, "Caminar")
}

func TestModules_DetailUnknown(t *testing.T) {
	term := newTerminal(t)
	term.signIn()
	term.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, modulesJSON))

	_, _, err := term.run("modules", "9")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "module 9 not found")
	assert.Zero(t, term.backend.count(http.MethodGet, "/progress/module/9/"))
}

func TestUnlock(t *testing.T) {
	term := newTerminal(t)
	term.signIn()
	term.backend.on(http.MethodPost, "/modules/2/unlock/", reply(http.StatusOK,
		`{"module":{"id":2,"name":"Finanzas"},"state":"unlocked","experience_points":20}`))
	term.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, modulesJSON))
	term.backend.on(http.MethodGet, "/missions/", reply(http.StatusOK, missionsJSON))

	out, _, err := term.run("unlock", "2")

	require.NoError(t, err)
	assert.Contains(t, out, "Módulo desbloqueado")
	assert.Equal(t, 1, term.backend.count(http.MethodPost, "/modules/2/unlock/"))
	assert.Equal(t, 1, term.backend.count(http.MethodGet, "/missions/"))
}

func TestUnlock_InvalidID(t *testing.T) {
	term := newTerminal(t)
	term.signIn()

	_, _, err := term.run("unlock", "abc")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid module id")
}

func TestMissions_OnlyOpenModules(t *testing.T) {
	term := newTerminal(t)
	term.signIn()
	term.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, modulesJSON))
	term.backend.on(http.MethodGet, "/missions/", reply(http.StatusOK, missionsJSON))

	out, _, err := term.run("missions")
	require.NoError(t, err)
	assert.Contains(t, out, "Caminar")
	assert.NotContains(t, out, "Ahorrar")

	out, _, err = term.run("missions", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Ahorrar")
}

func TestComplete_RefreshesOnce(t *testing.T) {
	term := newTerminal(t)
	term.signIn()
	term.backend.on(http.MethodPost, "/missions/m1/complete/", reply(http.StatusOK,
		`{"mission":{"id":"m1","module":{"id":1},"title":"Caminar","xp_reward":10},"state":"completed"}`))
	term.backend.on(http.MethodGet, "/modules/", reply(http.StatusOK, modulesJSON))
	before := term.backend.count(http.MethodGet, "/auth/me/")

	out, _, err := term.run("complete", "m1")

	require.NoError(t, err)
	assert.Contains(t, out, "Misión completada")
	assert.Equal(t, 1, term.backend.count(http.MethodGet, "/modules/"))
	// One profile load restores the session, one follows the completion.
	assert.Equal(t, before+2, term.backend.count(http.MethodGet, "/auth/me/"))
}

func TestProgress(t *testing.T) {
	term := newTerminal(t)
	term.signIn()
	term.backend.on(http.MethodGet, "/progress/overview/", reply(http.StatusOK,
		`{"total_xp":120,"level":2,"modules_unlocked":1,"missions_completed":3,"achievements_earned":1,"current_streaks":{"1":4}}`))

	out, _, err := term.run("progress")

	require.NoError(t, err)
	assert.Contains(t, out, "Nivel 2 · 120 XP")
	assert.Contains(t, out, "Misiones completadas: 3")
	assert.Contains(t, out, "racha módulo 1: 4 días")
}

func TestHabits_AddThenList(t *testing.T) {
	term := newTerminal(t)
	term.signIn()
	term.backend.on(http.MethodPost, "/habits/", reply(http.StatusCreated,
		`{"id":7,"nombre":"Meditar","dificultad":"facil"}`))
	term.backend.on(http.MethodGet, "/habits/", reply(http.StatusOK,
		`[{"id":7,"nombre":"Meditar","dificultad":"facil","horario_sugerido":"mañana","estado":"activo"}]`))

	out, _, err := term.run("habits", "add", "Meditar", "--difficulty", "facil", "--time", "mañana")

	require.NoError(t, err)
	assert.Contains(t, out, "Hábito creado")
	assert.Contains(t, out, "Meditar")
	assert.JSONEq(t, `{"nombre":"Meditar","dificultad":"facil","horario_sugerido":"mañana"}`,
		term.backend.body(http.MethodPost, "/habits/"))
}

func TestHabits_UpdateSendsOnlyChangedFields(t *testing.T) {
	term := newTerminal(t)
	term.signIn()
	term.backend.on(http.MethodPatch, "/habits/7/", reply(http.StatusOK, `{"id":7,"nombre":"Meditar","dificultad":"media"}`))
	term.backend.on(http.MethodGet, "/habits/", reply(http.StatusOK, `[]`))

	out, _, err := term.run("habits", "update", "7", "--difficulty", "media", "--stars", "0")

	require.NoError(t, err)
	assert.Contains(t, out, "Hábito actualizado")
	assert.JSONEq(t, `{"dificultad":"media","estrellas":0}`, term.backend.body(http.MethodPatch, "/habits/7/"))
}

func TestHabits_UpdateWithoutFieldsIsRejected(t *testing.T) {
	term := newTerminal(t)
	term.signIn()

	_, _, err := term.run("habits", "update", "7")

	require.Error(t, err)
	assert.Zero(t, term.backend.count(http.MethodPatch, "/habits/7/"))
}

func TestSurvey_Show(t *testing.T) {
	term := newTerminal(t)
	term.signIn()
	term.backend.on(http.MethodGet, "/wellness-survey/questions/", reply(http.StatusOK, questionsJSON))
	term.backend.on(http.MethodGet, "/wellness-survey/answers/", reply(http.StatusOK,
		`[{"question_id":1,"area":"Salud","value":70}]`))
	term.backend.on(http.MethodGet, "/wellness-survey/session/", reply(http.StatusOK,
		`{"id":3,"current_step":2,"is_completed":false}`))

	out, _, err := term.run("survey")

	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "¿Duermes bien?"), strings.Index(out, "¿Te conoces?"))
	assert.Contains(t, out, "70")
	assert.Contains(t, out, "Paso 2 · en curso")
}

func TestSurvey_AnswerSavesAndCompletes(t *testing.T) {
	term := newTerminal(t)
	term.signIn()
	term.backend.on(http.MethodGet, "/wellness-survey/questions/", reply(http.StatusOK, questionsJSON))
	term.backend.on(http.MethodPost, "/wellness-survey/answers/", reply(http.StatusCreated, `{}`))
	term.backend.on(http.MethodPut, "/wellness-survey/session/", reply(http.StatusOK,
		`{"id":3,"current_step":8,"is_completed":true}`))

	out, _, err := term.run("survey", "answer", "--set", "1=80", "--set", "2=55", "--step", "8", "--complete")

	require.NoError(t, err)
	assert.Contains(t, out, "Respuestas guardadas")
	assert.Contains(t, out, "Paso 8 · completada")
	assert.JSONEq(t, `[{"question_id":1,"area":"Salud","value":80},{"question_id":2,"area":"Personalidad","value":55}]`,
		term.backend.body(http.MethodPost, "/wellness-survey/answers/"))
	assert.JSONEq(t, `{"current_step":8,"is_completed":true}`,
		term.backend.body(http.MethodPut, "/wellness-survey/session/"))
}

func TestSurvey_AnswerRejectsUnknownQuestion(t *testing.T) {
	term := newTerminal(t)
	term.signIn()
	term.backend.on(http.MethodGet, "/wellness-survey/questions/", reply(http.StatusOK, questionsJSON))

	_, _, err := term.run("survey", "answer", "--set", "9=10")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "question 9 not found")
	assert.Zero(t, term.backend.count(http.MethodPost, "/wellness-survey/answers/"))
}

func TestRadar(t *testing.T) {
	term := newTerminal(t)
	term.signIn()
	term.backend.on(http.MethodGet, "/wellness-survey/results/", reply(http.StatusOK, `{"values":[10,20,30,40,50,60,70,80]}`))

	out, _, err := term.run("radar")

	require.NoError(t, err)
	assert.Contains(t, out, "Salud")
	assert.Contains(t, out, "80.0")
	assert.Contains(t, out, "Relaciones")
}

func TestRadar_ChartOption(t *testing.T) {
	term := newTerminal(t)
	term.signIn()
	term.backend.on(http.MethodGet, "/wellness-survey/results/", reply(http.StatusOK, `{"values":[10,20,30,40,50,60,70,80]}`))

	out, _, err := term.run("radar", "--chart")

	require.NoError(t, err)
	assert.Equal(t, "Progreso Vital", gjson.Get(out, "series.0.name").String())
	assert.Equal(t, int64(8), gjson.Get(out, "radar.indicator.#").Int())
}

func TestRadar_FailureShowsZeros(t *testing.T) {
	term := newTerminal(t)
	term.signIn()
	term.backend.on(http.MethodGet, "/wellness-survey/results/", reply(http.StatusServiceUnavailable, ``))

	out, _, err := term.run("--json", "radar")

	require.Error(t, err)
	assert.Equal(t, "Error al cargar radar", err.Error())
	assert.Equal(t, `[0,0,0,0,0,0,0,0]`, compact(gjson.Get(out, "values").Raw))
}

func compact(raw string) string {
	return strings.Join(strings.Fields(raw), "")
}
