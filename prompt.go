package quizbuilder

import (
	"fmt"
	"strings"
)

// buildQuestionPrompt fills the question template with the topic and retrieved context.
func buildQuestionPrompt(topic, context string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are a subject matter expert on the topic: %s\n\n", topic))

	sb.WriteString("Follow the instructions to create a quiz question:\n")
	sb.WriteString("1. Generate a question based on the topic provided and context as key \"question\"\n")
	sb.WriteString("2. Provide 4 multiple choice answers to the question as a list of key-value pairs \"choices\"\n")
	sb.WriteString("3. Provide the correct answer for the question from the list of answers as key \"answer\"\n")
	sb.WriteString("4. Provide an explanation as to why the answer is correct as key \"explanation\"\n\n")

	sb.WriteString("You must respond as a JSON object with the following structure:\n")
	sb.WriteString("{\n")
	sb.WriteString("    \"question\": \"<question>\",\n")
	sb.WriteString("    \"choices\": [\n")
	for i, key := range ChoiceKeys {
		sep := ","
		if i == len(ChoiceKeys)-1 {
			sep = ""
		}
		sb.WriteString(fmt.Sprintf("        {\"key\": \"%s\", \"value\": \"<choice>\"}%s\n", key, sep))
	}
	sb.WriteString("    ],\n")
	sb.WriteString("    \"answer\": \"<answer key from choices list>\",\n")
	sb.WriteString("    \"explanation\": \"<explanation as to why the answer is correct>\"\n")
	sb.WriteString("}\n\n")

	sb.WriteString(fmt.Sprintf("Context: %s\n", context))

	return sb.String()
}
