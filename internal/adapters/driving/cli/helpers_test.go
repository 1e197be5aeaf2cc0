package cli

import (
	"context"
	"fmt"
)

// fakeQAService is a canned-response QA service for command tests.
type fakeQAService struct {
	documentID   string
	ensureErr    error
	activateErr  error
	ensured      []string
	activated    []string
	answeredWith []string
}

func (f *fakeQAService) EnsureDocument(_ context.Context, ref string) (string, error) {
	if f.ensureErr != nil {
		return "", f.ensureErr
	}
	f.ensured = append(f.ensured, ref)
	return f.documentID, nil
}

func (f *fakeQAService) Activate(_ context.Context, documentID string) error {
	if f.activateErr != nil {
		return f.activateErr
	}
	f.activated = append(f.activated, documentID)
	return nil
}

func (f *fakeQAService) AnswerAll(_ context.Context, questions []string) []string {
	f.answeredWith = questions
	answers := make([]string, len(questions))
	for i, q := range questions {
		answers[i] = fmt.Sprintf("answer to %s", q)
	}
	return answers
}

// setupTestServices injects a fake QA service and returns it along with
// a cleanup that restores command state between tests.
func setupTestServices() (*fakeQAService, func()) {
	fake := &fakeQAService{documentID: "abc12345"}
	SetQAService(fake)

	return fake, func() {
		qaService = nil
		askQuestions = nil
		askJSON = false
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}
}
