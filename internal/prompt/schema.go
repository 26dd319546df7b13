package prompt

import (
	"github.com/abhisek/trigtutor/internal/domain"
	"github.com/abhisek/trigtutor/internal/llm"
)

func optionsNode() *llm.Node {
	return llm.Array("Exactamente 4 opciones de respuesta.",
		llm.Object("", llm.Prop("text", llm.String("Texto de la opción."))),
	).Exactly(domain.OptionCount)
}

func questionNode(desc string) *llm.Node {
	return llm.Object(desc,
		llm.Prop("question", llm.String("Texto de la pregunta.")),
		llm.Prop("options", optionsNode()),
		llm.Prop("correctAnswerIndex", llm.Integer("Índice de la respuesta correcta (0-3).").Range(0, domain.OptionCount-1)),
		llm.Prop("explanation", llm.String("Explicación detallada de por qué la respuesta es correcta.")),
	)
}

// TopicValidationSchema constrains topic validation responses.
var TopicValidationSchema = &llm.Schema{
	Name:        "topic-validation",
	Description: "Whether a topic is in scope, with alternatives when it is not",
	Root: llm.Object("",
		llm.Prop("is_relevant", llm.Boolean("Si el tema es relevante para matemáticas o trigonometría.")),
		llm.Prop("suggested_topics", llm.Array("Sugerencias de temas si no es relevante. Vacío si es relevante.",
			llm.String(""))),
	),
}

// LessonSchema constrains full lesson responses: a markdown body and a
// quiz of exactly ten questions.
var LessonSchema = &llm.Schema{
	Name:        "lesson-content",
	Description: "A lesson body in markdown and a ten question quiz",
	Root: llm.Object("",
		llm.Prop("body", llm.String("El contenido educativo en formato Markdown.")),
		llm.Prop("quiz", llm.Array("Un quiz con 10 preguntas de opción múltiple.",
			questionNode("")).Exactly(domain.LessonQuizSize)),
	),
}

// ExtraQuizSchema constrains additional quiz batches. The wrapper object
// keeps the root an object for providers that reject top-level arrays.
var ExtraQuizSchema = &llm.Schema{
	Name:        "extra-quiz",
	Description: "A batch of additional quiz questions",
	Root: llm.Object("",
		llm.Prop("questions", llm.Array("Preguntas de opción múltiple.", questionNode("")).AtLeast(1)),
	),
}

// ExerciseSchema constrains a single exercise.
var ExerciseSchema = &llm.Schema{
	Name:        "exercise",
	Description: "A multiple-choice practice exercise",
	Root:        questionNode(""),
}

// PracticeSessionSchema constrains a practice session.
var PracticeSessionSchema = &llm.Schema{
	Name:        "practice-session",
	Description: "A set of distinct practice exercises",
	Root: llm.Object("",
		llm.Prop("exercises", llm.Array("Ejercicios de opción múltiple, todos distintos.", questionNode("")).AtLeast(1)),
	),
}
