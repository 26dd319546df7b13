package generate

// Surface names a place where generation errors reach the learner.
type Surface string

const (
	SurfaceChat     Surface = "chat"
	SurfaceLesson   Surface = "lesson"
	SurfaceQuiz     Surface = "quiz"
	SurfaceExercise Surface = "exercise"
	SurfaceTutor    Surface = "tutor"
	SurfacePractice Surface = "practice"
)

type messagePair struct {
	rateLimit string
	generic   string
}

var userMessages = map[Surface]messagePair{
	SurfaceChat: {
		rateLimit: "Límite de solicitudes excedido. Por favor, espera un momento y vuelve a intentarlo.",
		generic:   "Ha ocurrido un error al procesar tu solicitud.",
	},
	SurfaceLesson: {
		rateLimit: "Límite de solicitudes excedido. Por favor, espera un momento y vuelve a intentarlo.",
		generic:   "No se pudo generar el contenido. Por favor, inténtalo de nuevo.",
	},
	SurfaceQuiz: {
		rateLimit: "Límite de solicitudes excedido. Por favor, inténtalo de nuevo en unos momentos.",
		generic:   "No se pudieron generar nuevas preguntas.",
	},
	SurfaceExercise: {
		rateLimit: "Límite de solicitudes excedido. Por favor, intenta de nuevo en unos momentos.",
		generic:   "No se pudo generar un nuevo ejercicio. Por favor, inténtalo de nuevo.",
	},
	SurfaceTutor: {
		rateLimit: "He alcanzado mi límite de consultas por ahora. Por favor, intenta de nuevo en unos momentos.",
		generic:   "Lo siento, hubo un problema al contactar a mi tutor interno. Por favor, inténtalo de nuevo.",
	},
	SurfacePractice: {
		rateLimit: "Límite de solicitudes excedido. Por favor, inténtalo de nuevo en unos momentos.",
		generic:   "No se pudieron cargar las preguntas de práctica. Inténtalo de nuevo.",
	},
}

// UserMessage maps err to the learner-facing text for a surface. There are
// exactly two messages per surface: rate limit and everything else.
func UserMessage(s Surface, err error) string {
	pair, ok := userMessages[s]
	if !ok {
		pair = userMessages[SurfaceChat]
	}
	if IsRateLimit(err) {
		return pair.rateLimit
	}
	return pair.generic
}
