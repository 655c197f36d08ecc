package domain

// Habit is a tracked habit. Wire names follow the backend.
type Habit struct {
	ID            int    `json:"id"`
	Name          string `json:"nombre"`
	Difficulty    string `json:"dificultad"`
	SuggestedTime string `json:"horario_sugerido,omitempty"`
	CreatedOn     string `json:"fecha_creacion,omitempty"`
	ActiveDays    *int   `json:"dias_activos,omitempty"`
	Stars         *int   `json:"estrellas,omitempty"`
	Level         *int   `json:"nivel,omitempty"`
	Status        string `json:"estado,omitempty"`
}

// NewHabit is the body of POST /habits/.
type NewHabit struct {
	Name          string `json:"nombre" validate:"required,max=100"`
	Difficulty    string `json:"dificultad" validate:"required,max=50"`
	SuggestedTime string `json:"horario_sugerido,omitempty" validate:"omitempty,max=50"`
}

// HabitUpdate is the body of PATCH /habits/{id}/. At least one field must be set.
type HabitUpdate struct {
	Name          *string `json:"nombre,omitempty" validate:"required_without_all=Difficulty SuggestedTime ActiveDays Stars Level Status,omitempty,min=1,max=100"`
	Difficulty    *string `json:"dificultad,omitempty" validate:"omitempty,min=1,max=50"`
	SuggestedTime *string `json:"horario_sugerido,omitempty" validate:"omitempty,max=50"`
	ActiveDays    *int    `json:"dias_activos,omitempty" validate:"omitempty,gte=0"`
	Stars         *int    `json:"estrellas,omitempty" validate:"omitempty,gte=0"`
	Level         *int    `json:"nivel,omitempty" validate:"omitempty,gte=0"`
	Status        *string `json:"estado,omitempty" validate:"omitempty,max=50"`
}
