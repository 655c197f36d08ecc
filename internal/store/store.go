// Package store holds the client-side state of one dashboard workspace: the
// signed-in session, modules and missions, habits, the wellness survey, the
// vital radar and transient toasts.
//
// Every operation records a display message on its store when it fails and
// also returns the error. Callers that only render state may ignore it.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	apperrors "github.com/satjeet/ClinePythonDividis/pkg/errors"
	"github.com/satjeet/ClinePythonDividis/pkg/validator"
)

// Display messages used when the backend gives no detail.
const (
	msgAuth          = "Error de autenticación"
	msgRegister      = "Error en el registro"
	msgProfile       = "Error al cargar el perfil"
	msgUpdateProfile = "Error al actualizar el perfil"
	msgModules       = "Error al cargar módulos"
	msgMissions      = "Error al cargar misiones"
	msgUnlock        = "Error al desbloquear módulo"
	msgComplete      = "Error al completar misión"
	msgModuleDetail  = "Error al cargar el progreso del módulo"
	msgOverview      = "Error al cargar el resumen de progreso"
	msgHabits        = "Error al cargar hábitos"
	msgCreateHabit   = "Error al crear hábito"
	msgUpdateHabit   = "Error al actualizar hábito"
	msgQuestions     = "Error al cargar preguntas"
	msgAnswers       = "Error al cargar respuestas"
	msgSaveAnswers   = "Error al guardar respuestas"
	msgSurveySession = "Error al cargar la sesión de encuesta"
	msgRadar         = "Error al cargar radar"
)

// ErrRadarShape is recorded when survey results do not carry one value per area.
var ErrRadarShape = errors.New("survey results must hold one value per vital area")

// DisplayMessage returns the text shown for err. Validation errors name the
// offending fields; backend errors carry the backend detail.
func DisplayMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var ve *validator.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return apperrors.DisplayMessage(err, fallback)
}

// opState is the loading and error status every store exposes. Loading is
// a counter so an operation that calls another stays loading until the
// outer one returns.
type opState struct {
	mu       sync.RWMutex
	inflight int
	err      string
	logger   *slog.Logger
	name     string
}

func newOpState(name string, log *slog.Logger) *opState {
	if log == nil {
		log = slog.Default()
	}
	return &opState{name: name, logger: log.With(slog.String("store", name))}
}

// begin marks an operation as started and clears the previous error.
func (o *opState) begin() {
	o.mu.Lock()
	o.inflight++
	o.err = ""
	o.mu.Unlock()
}

func (o *opState) end() {
	o.mu.Lock()
	if o.inflight > 0 {
		o.inflight--
	}
	o.mu.Unlock()
}

// fail records the display message for err and returns err.
func (o *opState) fail(ctx context.Context, op string, err error, fallback string) error {
	msg := DisplayMessage(err, fallback)
	o.mu.Lock()
	o.err = msg
	o.mu.Unlock()
	o.logger.WarnContext(ctx, "store operation failed",
		slog.String("op", op),
		slog.String("message", msg),
		slog.String("error", err.Error()),
	)
	return err
}

// Loading reports whether an operation is in progress.
func (o *opState) Loading() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.inflight > 0
}

// Err returns the display message of the last failed operation, or "".
func (o *opState) Err() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.err
}
