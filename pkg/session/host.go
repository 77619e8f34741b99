package session

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// stageName formats the player's name for host announcements.
func stageName(playerName string) string {
	name := strings.TrimSpace(playerName)
	if name == "" {
		return "mystery guest"
	}
	return titleCaser.String(name)
}

func introLine(playerName string, r Round) string {
	return fmt.Sprintf(
		"Welcome to Improv Battle, %s! Your first scene: %s (Hint: %s) When you are ready, say your first line.",
		stageName(playerName), r.Prompt, r.Hint)
}

func announceLine(roundNumber int, r Round) string {
	return fmt.Sprintf("Scene %d: %s (Hint: %s)", roundNumber, r.Prompt, r.Hint)
}

func closingLine(playerName string, maxRounds int) string {
	return fmt.Sprintf(
		"That's the show, %s! You made it through all %d scenes. Thanks for playing Improv Battle.",
		stageName(playerName), maxRounds)
}
