package store

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/satjeet/ClinePythonDividis/internal/domain"
	"github.com/satjeet/ClinePythonDividis/internal/event"
	"github.com/satjeet/ClinePythonDividis/pkg/kafka"
)

// ModulesService lists and unlocks modules. api.ModulesAPI implements it.
type ModulesService interface {
	List(ctx context.Context) ([]domain.Module, error)
	Unlock(ctx context.Context, id int) (*domain.ModuleProgress, error)
	Detail(ctx context.Context, id int) (*domain.ModuleDetail, error)
}

// MissionsService lists and completes missions. api.MissionsAPI implements it.
type MissionsService interface {
	List(ctx context.Context) ([]domain.Mission, error)
	Complete(ctx context.Context, id string) (*domain.MissionProgress, error)
}

// ProgressService returns the progression summary. api.ProgressAPI
// implements it.
type ProgressService interface {
	Overview(ctx context.Context) (*domain.ProgressOverview, error)
}

// ProfileSource is the part of Session other stores depend on.
type ProfileSource interface {
	FetchUserProfile(ctx context.Context) error
	Username() string
}

// Modules holds the module catalogue and the missions of unlocked modules.
type Modules struct {
	*opState

	modules  ModulesService
	missions MissionsService
	progress ProgressService
	session  ProfileSource
	events   *event.Emitter

	mu          sync.RWMutex
	moduleList  []domain.Module
	missionList []domain.Mission
	current     *domain.Module
	details     map[int]domain.ModuleDetail
	overview    *domain.ProgressOverview
}

func NewModules(modules ModulesService, missions MissionsService, progress ProgressService, session ProfileSource, events *event.Emitter, log *slog.Logger) *Modules {
	return &Modules{
		opState:  newOpState("modules", log),
		modules:  modules,
		missions: missions,
		progress: progress,
		session:  session,
		events:   events,
		details:  make(map[int]domain.ModuleDetail),
	}
}

// FetchModules replaces the module list.
func (m *Modules) FetchModules(ctx context.Context) error {
	m.begin()
	defer m.end()

	list, err := m.modules.List(ctx)
	if err != nil {
		return m.fail(ctx, "fetch_modules", err, msgModules)
	}
	m.mu.Lock()
	m.moduleList = list
	if m.current != nil {
		m.current = findModule(list, m.current.ID)
	}
	m.mu.Unlock()
	return nil
}

// FetchMissions replaces the mission list.
func (m *Modules) FetchMissions(ctx context.Context) error {
	m.begin()
	defer m.end()

	list, err := m.missions.List(ctx)
	if err != nil {
		return m.fail(ctx, "fetch_missions", err, msgMissions)
	}
	m.mu.Lock()
	m.missionList = list
	m.mu.Unlock()
	return nil
}

// UnlockModule spends XP on a module, then reloads modules and missions.
func (m *Modules) UnlockModule(ctx context.Context, id int) error {
	m.begin()
	defer m.end()

	res, err := m.modules.Unlock(ctx, id)
	if err != nil {
		return m.fail(ctx, "unlock_module", err, msgUnlock)
	}
	m.events.Emit(ctx, kafka.EventModuleUnlocked, m.session.Username(), event.SubjectModule, strconv.Itoa(id),
		event.ModuleUnlockedData{
			ModuleID:         id,
			ModuleName:       res.Module.Name,
			State:            string(res.State),
			ExperiencePoints: res.ExperiencePoints,
		})

	if err := m.FetchModules(ctx); err != nil {
		return err
	}
	return m.FetchMissions(ctx)
}

// CompleteMission marks a mission done, then reloads modules and the
// session profile once each, since XP and module state change with it.
func (m *Modules) CompleteMission(ctx context.Context, id string) error {
	m.begin()
	defer m.end()

	res, err := m.missions.Complete(ctx, id)
	if err != nil {
		return m.fail(ctx, "complete_mission", err, msgComplete)
	}
	m.events.Emit(ctx, kafka.EventMissionCompleted, m.session.Username(), event.SubjectMission, id,
		event.MissionCompletedData{
			MissionID: id,
			ModuleID:  res.Mission.Module.ID,
			Title:     res.Mission.Title,
			XPReward:  res.Mission.XPReward,
		})

	modErr := m.FetchModules(ctx)
	profErr := m.session.FetchUserProfile(ctx)
	if modErr != nil {
		return modErr
	}
	return profErr
}

// FetchModuleDetail loads progress, mission progress and streak of one
// module.
func (m *Modules) FetchModuleDetail(ctx context.Context, id int) error {
	m.begin()
	defer m.end()

	d, err := m.modules.Detail(ctx, id)
	if err != nil {
		return m.fail(ctx, "fetch_module_detail", err, msgModuleDetail)
	}
	m.mu.Lock()
	m.details[id] = *d
	m.mu.Unlock()
	return nil
}

// FetchOverview loads the progression summary.
func (m *Modules) FetchOverview(ctx context.Context) error {
	m.begin()
	defer m.end()

	o, err := m.progress.Overview(ctx)
	if err != nil {
		return m.fail(ctx, "fetch_overview", err, msgOverview)
	}
	m.mu.Lock()
	m.overview = o
	m.mu.Unlock()
	return nil
}

// SetCurrentModule selects a loaded module and returns a copy of it.
// Unknown ids are ignored and report false. The copy stays valid even if a
// later FetchModules drops the selection.
func (m *Modules) SetCurrentModule(id int) (domain.Module, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mod := findModule(m.moduleList, id)
	if mod == nil {
		return domain.Module{}, false
	}
	m.current = mod
	return *mod, true
}

func (m *Modules) Modules() []domain.Module {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Module(nil), m.moduleList...)
}

func (m *Modules) Missions() []domain.Mission {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Mission(nil), m.missionList...)
}

func (m *Modules) CurrentModule() *domain.Module {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	c := *m.current
	return &c
}

// UnlockedModules returns modules that are unlocked or completed.
func (m *Modules) UnlockedModules() []domain.Module {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return openModules(m.moduleList)
}

// AvailableMissions returns missions whose module is open.
func (m *Modules) AvailableMissions() []domain.Mission {
	m.mu.RLock()
	defer m.mu.RUnlock()

	open := make(map[int]struct{})
	for _, mod := range openModules(m.moduleList) {
		open[mod.ID] = struct{}{}
	}
	out := []domain.Mission{}
	for _, ms := range m.missionList {
		if _, ok := open[ms.Module.ID]; ok {
			out = append(out, ms)
		}
	}
	return out
}

// NextModule returns the first locked module, or nil.
func (m *Modules) NextModule() *domain.Module {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, mod := range m.moduleList {
		if mod.State == domain.ModuleLocked {
			next := mod
			return &next
		}
	}
	return nil
}

// Detail returns the loaded detail of a module.
func (m *Modules) Detail(id int) (domain.ModuleDetail, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.details[id]
	return d, ok
}

func (m *Modules) Overview() *domain.ProgressOverview {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.overview == nil {
		return nil
	}
	o := *m.overview
	return &o
}

func openModules(list []domain.Module) []domain.Module {
	out := []domain.Module{}
	for _, mod := range list {
		if mod.Open() {
			out = append(out, mod)
		}
	}
	return out
}

func findModule(list []domain.Module, id int) *domain.Module {
	for i := range list {
		if list[i].ID == id {
			mod := list[i]
			return &mod
		}
	}
	return nil
}
