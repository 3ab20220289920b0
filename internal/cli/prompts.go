package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// PromptForDirective asks the user what to analyze.
func PromptForDirective() (string, error) {
	var directive string
	prompt := &survey.Input{
		Message: "What should the agents investigate?",
		Help:    `A directive in plain language, e.g. "assess semiconductor supply chain risk" or "what is driving small caps this month"`,
	}

	err := survey.AskOne(prompt, &directive, survey.WithValidator(validateDirective))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(directive), nil
}

func validateDirective(val interface{}) error {
	str, ok := val.(string)
	if !ok {
		return fmt.Errorf("directive must be text")
	}
	str = strings.TrimSpace(str)
	if str == "" {
		return fmt.Errorf("directive cannot be empty")
	}
	if len(str) < 8 {
		return fmt.Errorf("directive too short, describe what to investigate")
	}
	if len(str) > 500 {
		return fmt.Errorf("directive too long (max 500 characters)")
	}
	return nil
}
