package quiz

import (
	"fmt"
	"strings"
)

// Question types.
const (
	TypeMultipleChoice = "multiple-choice"
	TypeTrueFalse      = "true-false"
	TypeShortAnswer    = "short-answer"
	TypeMatching       = "matching"
	TypeFillBlank      = "fill-blank"
)

// DefaultTypes are used when the options name none.
var DefaultTypes = []string{TypeMultipleChoice, TypeTrueFalse, TypeShortAnswer}

var difficultyInstructions = map[string]string{
	"easy":   "Questions basiques: rappel de définitions et applications directes.",
	"medium": "Questions demandant de la réflexion et des applications en contexte.",
	"hard":   "Questions complexes: raisonnement avancé et problèmes en plusieurs étapes.",
}

var typeInstructions = map[string]string{
	TypeMultipleChoice: "4 options, une seule correcte",
	TypeTrueFalse:      "affirmation vraie ou fausse",
	TypeShortAnswer:    "réponse courte (1 ou 2 mots)",
	TypeMatching:       "association entre deux colonnes",
	TypeFillBlank:      "phrase à trous",
}

func typeList(types []string) string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		if s, ok := typeInstructions[t]; ok {
			out = append(out, s)
		} else {
			out = append(out, t)
		}
	}
	return strings.Join(out, ", ")
}

const quizSystem = "Tu es un expert en création de quiz pédagogiques conformes au programme scolaire. Tu réponds uniquement en JSON valide."

func quizPrompt(subject, level, topic, difficulty string, count int, types []string) string {
	return fmt.Sprintf(`Crée un quiz de %[5]d questions pour le niveau %[2]s en %[1]s sur le thème "%[3]s".

DIFFICULTÉ: %[4]s
%[6]s

TYPES DE QUESTIONS: %[7]s

Varie les types, progresse en difficulté, couvre les concepts importants et utilise un langage clair.

Réponds avec ce JSON:
{
  "title": "Quiz: %[3]s - Niveau %[2]s",
  "subject": "%[1]s",
  "level": "%[2]s",
  "topic": "%[3]s",
  "difficulty": "%[4]s",
  "questions": [{"id": "q1", "type": "...", "question": "...", "options": ["..."], "correctAnswer": 0, "explanation": "...", "points": 10, "timeLimit": 60, "concept": "..."}],
  "passingScore": 70,
  "timeLimit": %[8]d,
  "shuffleQuestions": true
}`, subject, level, topic, difficulty, count, difficultyInstructions[difficulty], typeList(types), count*60)
}

func explanationPrompt(question, answer, subject string) string {
	return fmt.Sprintf(`Pour cette question de %s, écris une explication pédagogique en trois phrases au maximum.
Explique pourquoi la réponse est correcte, pourquoi les autres options ne le sont pas, donne un exemple
concret et une astuce pour retenir.

Question: %s
Réponse correcte: %s`, subject, question, answer)
}

func textQuizPrompt(text, subject string) string {
	return fmt.Sprintf(`À partir du texte suivant sur %s, crée un quiz de 5 questions sur les points importants,
avec des questions de compréhension, une seule réponse correcte par question et une explication.

TEXTE:
%s

Réponds avec le même JSON que pour un quiz: {"title": "...", "questions": [...], "passingScore": 70, "timeLimit": 300}`,
		subject, text)
}
