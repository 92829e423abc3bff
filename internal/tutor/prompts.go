package tutor

import (
	"fmt"
	"strings"
)

func welcomePrompt(subject, topic, style string, gaps []string) string {
	var b strings.Builder
	b.WriteString("Tu es un tuteur pédagogique bienveillant et encourageant.\n\n")
	fmt.Fprintf(&b, "Élève: style d'apprentissage %s\n", style)
	if subject != "" {
		fmt.Fprintf(&b, "Matière: %s\n", subject)
	}
	if topic != "" {
		fmt.Fprintf(&b, "Thème: %s\n", topic)
	}
	if len(gaps) > 0 {
		fmt.Fprintf(&b, "Lacunes détectées: %s\n", strings.Join(gaps, ", "))
	} else {
		b.WriteString("Pas de lacunes significatives détectées\n")
	}
	b.WriteString(`
Écris un message d'accueil chaleureux en tutoyant l'élève. Propose une aide adaptée à son style
d'apprentissage, suggère une approche personnalisée, encourage-le et demande-lui sur quoi il souhaite
travailler. Ton amical et pédagogique, pas trop formel.`)
	return b.String()
}

func answerPrompt(history, style, extra, question string) string {
	var b strings.Builder
	b.WriteString("Tu es un tuteur pédagogique expert. Réponds à la question de l'élève.\n\n")
	fmt.Fprintf(&b, "CONTEXTE DE LA SESSION:\n%s\n\n", history)
	fmt.Fprintf(&b, "STYLE D'APPRENTISSAGE DE L'ÉLÈVE: %s\n", style)
	if extra != "" {
		fmt.Fprintf(&b, "CONTEXTE SUPPLÉMENTAIRE: %s\n", extra)
	}
	fmt.Fprintf(&b, "\nQUESTION DE L'ÉLÈVE: %s\n\n", question)
	fmt.Fprintf(&b, `Sois précis et pédagogique, adapte-toi au style %s et utilise des exemples concrets.
Termine par une question de suivi pour vérifier la compréhension et propose une activité pratique si c'est pertinent.
Réponds naturellement, sans formatage spécial.`, style)
	return b.String()
}

func exercisePrompt(topic, difficulty string) string {
	return fmt.Sprintf(`Génère un exercice personnalisé sur le thème "%s" de difficulté %s.
Il doit être progressif, contextualisé par une situation concrète, et se résoudre en 5 à 10 minutes.

Format:
Titre: ...
Énoncé: ...
Questions: 1 ou 2 questions guidées
Indices: 3 indices progressifs
Solution: explication complète
Compétences travaillées: ...`, topic, difficulty)
}

func summaryPrompt(minutes int, topic string, difficulties, messages int) string {
	if topic == "" {
		topic = "divers"
	}
	return fmt.Sprintf(`Résume cette session de tutorat pour l'élève.

Durée: %d minutes
Sujets abordés: %s
Difficultés rencontrées: %d
Nombre d'échanges: %d

Fais le point sur ce qui a été appris, souligne les progrès, donne des recommandations pour la suite
et motive l'élève pour la prochaine session. Ton positif et constructif.`, minutes, topic, difficulties, messages)
}
