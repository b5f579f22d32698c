package services

import (
	"fmt"
	"strings"

	dm "learnez/internal/models/domain_models"
)

const questionSystemPrompt = `You write multiple-choice questions that test understanding of study material.

Rules:
- Base the question on the numbered passages when they are relevant.
- Write exactly four options. One is correct; the others are plausible but wrong.
- Difficulty runs from 1 (recall of a single fact) to 10 (synthesis across several ideas).
- Never repeat or paraphrase a question from the exclusion list.
- Answer in the language of the passages.`

const milestoneSystemPrompt = `You plan learning roadmaps one milestone at a time.

Rules:
- Each milestone builds on the previous ones and never repeats them.
- Stay within the learner's goal and the supplied material.
- When the roadmap already covers the goal and has at least the minimum number of milestones, return an empty label.
- Never exceed the maximum number of milestones.`

const checkpointSystemPrompt = `You break one roadmap milestone into ordered checkpoints.

Rules:
- Each checkpoint is one concrete, checkable learning step.
- Ground checkpoints in the numbered passages and report the passage index you used, or -1.
- Keep labels short and descriptions to one or two sentences.`

var localeNames = map[string]string{
	"vi": "Vietnamese",
	"en": "English",
	"fr": "French",
	"ja": "Japanese",
}

func localeName(locale string) string {
	if name, ok := localeNames[strings.ToLower(locale)]; ok {
		return name
	}
	if locale == "" {
		return "English"
	}
	return locale
}

func writePassages(b *strings.Builder, passages []dm.Passage) {
	if len(passages) == 0 {
		b.WriteString("No passages were found. Use general knowledge of the topic.\n")
		return
	}
	b.WriteString("Passages:\n")
	for i, p := range passages {
		if p.Section != "" {
			fmt.Fprintf(b, "[%d] (%s) %s\n", i, p.Section, p.Content)
		} else {
			fmt.Fprintf(b, "[%d] %s\n", i, p.Content)
		}
	}
}

func buildQuestionPrompt(in QuestionInput, passages []dm.Passage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	fmt.Fprintf(&b, "Difficulty: %d of %d\n\n", in.Difficulty, dm.MaxLevel)
	writePassages(&b, passages)
	if len(in.ExcludeQuestions) > 0 {
		b.WriteString("\nDo not ask any of these again:\n")
		for _, q := range in.ExcludeQuestions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	b.WriteString("\nUse max_score 10, min_score 0 and passing_score 5 unless the question warrants otherwise.\n")
	return b.String()
}

func buildMilestonePrompt(in MilestoneInput, passages []dm.Passage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Learner goal: %s\n", in.UserGoal)
	fmt.Fprintf(&b, "Write in %s.\n", localeName(in.Locale))
	fmt.Fprintf(&b, "This is milestone number %d. Minimum milestones: %d. Maximum milestones: %d.\n\n", in.Index+1, in.MinCount, in.MaxCount)
	if len(in.PreviousDescriptions) > 0 {
		b.WriteString("Previous milestones:\n")
		for i, d := range in.PreviousDescriptions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, d)
		}
		b.WriteString("\n")
	}
	writePassages(&b, passages)
	return b.String()
}

func buildCheckpointPrompt(in CheckpointInput, passages []dm.Passage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Milestone: %s\n", in.MilestoneName)
	fmt.Fprintf(&b, "Description: %s\n", in.MilestoneDescription)
	fmt.Fprintf(&b, "Write in %s.\n", localeName(in.Locale))
	fmt.Fprintf(&b, "Produce between %d and %d checkpoints.\n\n", in.MinCount, in.MaxCount)
	writePassages(&b, passages)
	return b.String()
}
