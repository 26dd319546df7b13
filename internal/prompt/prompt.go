// Package prompt builds the generation requests for every use case: the
// instructions sent to the model and the response shape they must match.
package prompt

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/trigtutor/internal/cache"
	"github.com/abhisek/trigtutor/internal/domain"
	"github.com/abhisek/trigtutor/internal/llm"
)

// Audience is the learner level every prompt targets.
const Audience = "estudiantes de secundaria"

// Operation tags used in cache keys and error messages.
const (
	OpTopicValidation = "validarTema"
	OpLesson          = "generarContenido"
	OpExtraQuiz       = "nuevasPreguntas"
	OpExercise        = "ejercicio"
	OpPracticeSession = "sesionPractica"
	OpClarification   = "clarification"
)

// ExtraQuizSize and PracticeSessionSize are the batch sizes requested from
// the model and the caps applied to what it returns.
const (
	ExtraQuizSize       = 5
	PracticeSessionSize = 5
)

// Prompt is a fully built generation request for one use case.
type Prompt struct {
	// Op is the operation tag used for cache keys and errors.
	Op string

	// Purpose labels the backend call in the LLM event log.
	Purpose string

	System string
	User   string

	// Schema is the response contract. Nil means plain text.
	Schema *llm.Schema

	// ExactCacheArgs lead the cache key verbatim.
	ExactCacheArgs []string

	// CacheArgs follow in the cache key, trimmed and lower-cased.
	CacheArgs []string

	// Cacheable marks prompts whose answers may be reused within the TTL.
	Cacheable bool

	MaxTokens   int
	Temperature float64
}

// CacheKey returns the cache key for this prompt.
func (p Prompt) CacheKey() string {
	if len(p.ExactCacheArgs) == 0 {
		return cache.Key(p.Op, p.CacheArgs...)
	}
	parts := slices.Clone(p.ExactCacheArgs)
	for _, a := range p.CacheArgs {
		parts = append(parts, cache.Normalize(a))
	}
	return cache.ExactKey(p.Op, parts...)
}

// Request converts the prompt into a provider request.
func (p Prompt) Request() llm.Request {
	return llm.Request{
		System:      p.System,
		User:        p.User,
		Schema:      p.Schema,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	}
}

const tutorSystemPrompt = `Eres un tutor de trigonometría para ` + Audience + `. Escribes en español, con un tono claro, paciente y alentador.`

const jsonOnly = `Tu respuesta DEBE ser un objeto JSON válido con la estructura indicada. No incluyas ninguna otra palabra ni formato como "json" o ` + "```" + `.`

// TopicValidation builds the prompt that decides whether a topic is in scope.
func TopicValidation(topic string) Prompt {
	var b strings.Builder
	b.WriteString(`Tu tarea es validar si el tema de un usuario está relacionado con la trigonometría o las matemáticas en general. Sé flexible y permite temas matemáticos amplios (cálculo, álgebra, geometría), pero rechaza temas que no estén relacionados (por ejemplo, historia, biología, literatura).`)
	fmt.Fprintf(&b, "\n\nAnaliza el siguiente tema: %q\n\n", topic)
	b.WriteString(jsonOnly)
	b.WriteString(`

- "is_relevant" debe ser true si el tema es de matemáticas o trigonometría, y false si no lo es.
- "suggested_topics" debe ser un array con tres sugerencias de temas de trigonometría si "is_relevant" es false. Si es true, debe ser un array vacío.`)

	return Prompt{
		Op:          OpTopicValidation,
		Purpose:     "topic-validation",
		System:      `Eres un asistente de IA para una aplicación de tutoría de trigonometría.`,
		User:        b.String(),
		Schema:      TopicValidationSchema,
		CacheArgs:   []string{topic},
		Cacheable:   true,
		Temperature: 0.2,
	}
}

// Lesson builds the full lesson prompt: a structured markdown page and a
// ten question quiz.
func Lesson(topic string) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Genera una página educativa completa sobre %q en español, dirigida a %s.\n", topic, Audience)
	b.WriteString(`Estructura del contenido:
1. **Título Principal**: Usa un H1 (#) con el nombre del tema.
2. **Introducción**: Usa un H2 (##). Escribe un párrafo (100-150 palabras) que explique qué es el tema, su importancia en trigonometría y una aplicación práctica para captar interés.
3. **Conceptos Clave**: Usa un H2 (##). Proporciona una lista de 3-5 ideas principales en viñetas (* o -), con explicaciones claras y un breve ejemplo por concepto.
4. **Fórmulas Importantes**: Usa un H2 (##). Muestra las fórmulas clave en bloques de código Markdown. Incluye una breve descripción de cada fórmula (su propósito y variables).
5. **Ejemplo Resuelto**: Usa un H2 (##). Proporciona un problema resuelto paso a paso que aplique el tema, mostrando el razonamiento y cálculos.
6. **Aplicaciones Prácticas**: Usa un H2 (##). Escribe un párrafo (50-100 palabras) sobre usos reales del tema (por ejemplo, en arquitectura, navegación).

`)
	fmt.Fprintf(&b, "Además del contenido, crea un quiz de %d preguntas clave de opción múltiple basadas en el contenido que generaste. Cada pregunta debe tener %d opciones. Para cada pregunta, proporciona una explicación detallada que aclare por qué la respuesta correcta es la correcta.\n\n",
		domain.LessonQuizSize, domain.OptionCount)
	b.WriteString(jsonOnly)
	b.WriteString(`
El campo "body" contiene la página en Markdown y "quiz" las preguntas.`)

	return Prompt{
		Op:          OpLesson,
		Purpose:     "lesson",
		System:      tutorSystemPrompt,
		User:        b.String(),
		Schema:      LessonSchema,
		CacheArgs:   []string{topic},
		Cacheable:   true,
		Temperature: 0.7,
	}
}

// ExtraQuiz builds the prompt for a fresh batch of quiz questions once the
// lesson's own pool is used up. Not cached: a retake must get new questions.
func ExtraQuiz(topic string) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Crea un quiz de %d preguntas clave de opción múltiple sobre %q en español, para %s. Cada pregunta debe tener %d opciones. Para cada pregunta, proporciona una explicación detallada que aclare por qué la respuesta correcta es la correcta.\n\n",
		ExtraQuizSize, topic, Audience, domain.OptionCount)
	b.WriteString(jsonOnly)
	b.WriteString(`
Devuelve las preguntas en el campo "questions".`)

	return Prompt{
		Op:          OpExtraQuiz,
		Purpose:     "extra-quiz",
		System:      tutorSystemPrompt,
		User:        b.String(),
		Schema:      ExtraQuizSchema,
		CacheArgs:   []string{topic},
		Temperature: 0.9,
	}
}

// Exercise builds the single exercise prompt. Prior question texts for the
// topic are listed verbatim, in order, as an exclusion list.
func Exercise(topic string, history []string) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Crea un ejercicio de opción múltiple **NUEVO y DIFERENTE** sobre %q en español.\n", topic)
	b.WriteString(historyBlock(history))
	fmt.Fprintf(&b, "\nLa pregunta debe ser relevante y de nivel de secundaria. Proporciona %d opciones de respuesta (una correcta y tres incorrectas plausibles). Indica el índice de la respuesta correcta (0-%d) y una explicación clara y concisa de la solución.\n\n",
		domain.OptionCount, domain.OptionCount-1)
	b.WriteString(jsonOnly)

	return Prompt{
		Op:          OpExercise,
		Purpose:     "exercise",
		System:      tutorSystemPrompt,
		User:        b.String(),
		Schema:      ExerciseSchema,
		CacheArgs:   []string{topic},
		Temperature: 0.9,
	}
}

func historyBlock(history []string) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`
IMPORTANTE: Ya se han mostrado los siguientes ejercicios. Para asegurar la variedad, DEBES crear un problema completamente NUEVO que sea distinto a los del historial. No repitas los mismos problemas ni crees variaciones simples cambiando solo los números. Sé creativo.

Historial de ejercicios anteriores (NO REPETIR):
`)
	for _, q := range history {
		fmt.Fprintf(&b, "- \"%s\"\n", q)
	}
	return b.String()
}

// PracticeSession builds the prompt for a set of distinct exercises.
func PracticeSession(topic string) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Crea una sesión de práctica de %d ejercicios de opción múltiple sobre %q en español para %s.\n\n", PracticeSessionSize, topic, Audience)
	fmt.Fprintf(&b, `INSTRUCCIONES IMPORTANTES:
1. **VARIEDAD**: Cada uno de los %d ejercicios debe ser único y diferente de los demás. Cubre diferentes aspectos del tema, usa diferentes números y formula las preguntas de maneras distintas. No repitas problemas.
2. **ESTRUCTURA**: Cada ejercicio debe tener una pregunta clara, %d opciones de respuesta (una correcta y tres incorrectas plausibles), el índice de la respuesta correcta, y una explicación detallada de la solución.

`, PracticeSessionSize, domain.OptionCount)
	b.WriteString(jsonOnly)
	b.WriteString(`
Devuelve los ejercicios en el campo "exercises".`)

	return Prompt{
		Op:          OpPracticeSession,
		Purpose:     "practice-session",
		System:      tutorSystemPrompt,
		User:        b.String(),
		Schema:      PracticeSessionSchema,
		CacheArgs:   []string{topic},
		Temperature: 0.9,
	}
}

// Clarification builds the plain-text tutor prompt grounded on one exercise.
func Clarification(exercise domain.ExerciseContent, question string) Prompt {
	var b strings.Builder
	b.WriteString("Un estudiante acaba de intentar resolver el siguiente ejercicio y tiene una pregunta. Tu tarea es responder a su pregunta de manera clara y concisa, basándote únicamente en el contexto del ejercicio proporcionado.\n\n")
	b.WriteString("**Contexto del Ejercicio:**\n")
	fmt.Fprintf(&b, "- **Pregunta:** %s\n", exercise.Question)
	b.WriteString("- **Opciones:**\n")
	for i, opt := range exercise.Options {
		fmt.Fprintf(&b, "%s) %s\n", OptionLabel(i), opt.Text)
	}
	fmt.Fprintf(&b, "- **Respuesta Correcta (Índice):** %d\n", exercise.CorrectAnswerIndex)
	fmt.Fprintf(&b, "- **Explicación de la Solución:** %s\n\n", exercise.Explanation)
	fmt.Fprintf(&b, "**Pregunta del Estudiante:**\n%q\n\n", question)
	b.WriteString(`**Instrucciones:**
1. Responde directamente a la pregunta del estudiante.
2. Utiliza la explicación proporcionada como base para tu respuesta si es relevante.
3. Sé alentador y positivo.
4. No introduzcas conceptos nuevos que no estén directamente relacionados con la resolución de este problema específico.
5. Tu respuesta debe ser solo texto, utilizando Markdown simple para formato si es necesario (negritas, listas). No uses JSON.`)

	return Prompt{
		Op:             OpClarification,
		Purpose:        "clarification",
		System:         `Eres un tutor de trigonometría amable y servicial.`,
		User:           b.String(),
		ExactCacheArgs: []string{exercise.Question},
		CacheArgs:      []string{question},
		Cacheable:      true,
		Temperature:    0.5,
	}
}

// OptionLabel returns the letter for the option at index i: A, B, C...
func OptionLabel(i int) string {
	return string(rune('A' + i))
}
