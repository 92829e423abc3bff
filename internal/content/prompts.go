package content

import (
	"fmt"
	"strings"

	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

// Learning styles.
const (
	StyleVisual      = "visual"
	StyleAuditory    = "auditory"
	StyleReading     = "reading"
	StyleKinesthetic = "kinesthetic"
)

var styleInstructions = map[string]string{
	StyleVisual:      "Inclus des explications visuelles, des diagrammes à décrire et des analogies visuelles.",
	StyleAuditory:    "Utilise un langage oral, des exemples parlants et une structure qui pourrait être expliquée à voix haute.",
	StyleReading:     "Structure le contenu de manière textuelle claire, avec des paragraphes bien organisés et des listes.",
	StyleKinesthetic: "Propose des activités pratiques, des exercices à réaliser et des applications concrètes.",
}

// StyleInstruction returns the prompt instruction for style, defaulting to reading.
func StyleInstruction(style string) string {
	if s, ok := styleInstructions[style]; ok {
		return s
	}
	return styleInstructions[StyleReading]
}

const courseSystem = "Tu es un enseignant expert du programme scolaire français. Tu réponds uniquement en JSON valide."

func coursePrompt(req models.CourseRequest) string {
	return fmt.Sprintf(`Crée un cours complet pour le niveau %[2]s en %[1]s sur le thème "%[3]s".

STYLE D'APPRENTISSAGE: %[4]s
%[5]s

Le cours doit contenir des objectifs clairs, une introduction, des sections progressives avec des exemples,
un résumé et des applications dans la vie réelle.

Réponds avec ce JSON:
{
  "title": "...",
  "subject": "%[1]s",
  "level": "%[2]s",
  "topic": "%[3]s",
  "objectives": ["..."],
  "duration": "1h",
  "difficulty": "facile|moyen|difficile",
  "keyConcepts": ["..."],
  "content": {
    "introduction": "...",
    "sections": [{"title": "...", "content": "...", "examples": ["..."]}],
    "summary": "...",
    "realWorldApplications": "..."
  },
  "prerequisites": ["..."],
  "targetSkills": ["..."]
}`, req.Subject, req.Level, req.Topic, req.LearningStyle, StyleInstruction(req.LearningStyle))
}

func exercisesPrompt(subject, topic string, count int) string {
	return fmt.Sprintf(`Génère %d exercices de %s sur "%s", du plus simple au plus difficile.
Chaque exercice a un énoncé, trois indices progressifs et une solution détaillée.

Réponds avec ce JSON:
{"exercises": [{"title": "...", "statement": "...", "hints": ["...", "...", "..."], "solution": "...", "difficulty": "facile|moyen|difficile", "skills": ["..."]}]}`,
		count, subject, topic)
}

func summaryPrompt(topic string) string {
	return fmt.Sprintf(`Rédige une fiche de révision en Markdown sur "%s" avec:
- une définition
- les points clés
- les formules ou règles importantes
- les types d'exemples à connaître
- les erreurs fréquentes
- des astuces de mémorisation`, topic)
}

func courseQuizPrompt(course *models.GeneratedCourse) string {
	return fmt.Sprintf(`Crée un quiz de 10 questions à choix multiple (4 options) pour vérifier la compréhension du cours "%s"
(%s, niveau %s). Concepts clés: %s.

Réponds avec ce JSON:
{"title": "Quiz: %s", "questions": [{"question": "...", "options": ["...", "...", "...", "..."], "correctAnswer": 0, "explanation": "...", "difficulty": "facile|moyen|difficile", "points": 10, "concept": "..."}], "passingScore": 70, "timeLimit": 900}`,
		course.Title, course.Subject, course.Level, strings.Join(course.KeyConcepts, ", "), course.Title)
}

func flashcardPrompt(concept string) string {
	return fmt.Sprintf(`Crée une carte de révision pour le concept "%s".
Réponds avec ce JSON:
{"front": "question courte", "back": "réponse avec un exemple", "concept": "%s", "difficulty": "facile", "category": "définition"}`,
		concept, concept)
}
