package domain

// AreaCount is the number of vital areas on the radar.
const AreaCount = 8

// VitalAreas are the radar axes, in display order.
var VitalAreas = [AreaCount]string{
	"Salud",
	"Personalidad",
	"Intelecto",
	"Carrera",
	"Finanzas",
	"Calidad de Vida",
	"Emocionalidad",
	"Relaciones",
}

// SurveyQuestion is one wellness survey question.
type SurveyQuestion struct {
	ID    int    `json:"id"`
	Area  string `json:"area"`
	Text  string `json:"text"`
	Order int    `json:"order"`
}

// SurveyAnswer scores one question from 0 to 100.
type SurveyAnswer struct {
	QuestionID int    `json:"question_id" validate:"required,gte=1"`
	Area       string `json:"area" validate:"required"`
	Value      int    `json:"value" validate:"gte=0,lte=100"`
}

// SurveySession tracks how far the user got through the survey.
type SurveySession struct {
	ID          int  `json:"id,omitempty"`
	CurrentStep int  `json:"current_step"`
	IsCompleted bool `json:"is_completed"`
}

// SurveySessionUpdate is the body of PUT /wellness-survey/session/.
type SurveySessionUpdate struct {
	CurrentStep int  `json:"current_step" validate:"gte=1"`
	IsCompleted bool `json:"is_completed"`
}

// SurveyResults holds one average per vital area.
type SurveyResults struct {
	Values []float64 `json:"values"`
}
